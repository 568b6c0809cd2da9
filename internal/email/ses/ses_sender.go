package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"publicpulse/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	portalURL   string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, portalURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		portalURL:   portalURL,
	}, nil
}

func (s *sesSender) SendSubmissionReceived(ctx context.Context, toEmail, toName, submissionID string) error {
	trackURL := fmt.Sprintf("%s/submissions/%s", s.portalURL, submissionID)

	subject := "Your document submission has been received"
	htmlBody := buildSubmissionReceivedHTML(toName, submissionID, trackURL)
	textBody := fmt.Sprintf("Hi %s,\n\nWe have received your document submission (reference %s). You can track its progress at:\n%s\n\nPublicPulse Portal", toName, submissionID, trackURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendDecisionNotice(ctx context.Context, toEmail, toName, submissionID, decision, summary string) error {
	trackURL := fmt.Sprintf("%s/submissions/%s", s.portalURL, submissionID)

	subject := fmt.Sprintf("Your submission has been %s", decision)
	htmlBody := buildDecisionHTML(toName, submissionID, decision, summary, trackURL)
	textBody := fmt.Sprintf("Hi %s,\n\nA decision has been made on your document submission (reference %s): %s.\n\n%s\n\nDetails: %s\n\nPublicPulse Portal", toName, submissionID, decision, summary, trackURL)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildSubmissionReceivedHTML(name, submissionID, trackURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Submission received</h2>
  <p>Hi %s,</p>
  <p>We have received your document submission. Your reference number is <strong>%s</strong>.</p>
  <p>Our officers will review the extracted details and you will be notified once a decision is made.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #1D4ED8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Track Submission</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">PublicPulse - Government Document Portal</p>
</body>
</html>`, name, submissionID, trackURL)
}

func buildDecisionHTML(name, submissionID, decision, summary, trackURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Decision on submission %s</h2>
  <p>Hi %s,</p>
  <p>A decision has been made on your document submission: <strong>%s</strong>.</p>
  <p>%s</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #1D4ED8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Details</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">PublicPulse - Government Document Portal</p>
</body>
</html>`, submissionID, name, decision, summary, trackURL)
}
