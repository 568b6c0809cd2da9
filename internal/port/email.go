package port

import "context"

// EmailSender defines the contract for submission notifications.
type EmailSender interface {
	SendSubmissionReceived(ctx context.Context, toEmail, toName, submissionID string) error
	SendDecisionNotice(ctx context.Context, toEmail, toName, submissionID, decision, summary string) error
}
