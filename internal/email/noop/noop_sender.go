package noop

import (
	"context"

	"go.uber.org/zap"

	"publicpulse/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates a no-op EmailSender that only logs, for local
// development without SES credentials.
func NewNoopSender(log *zap.Logger) port.EmailSender {
	return &noopSender{log: log}
}

func (s *noopSender) SendSubmissionReceived(_ context.Context, toEmail, toName, submissionID string) error {
	s.log.Info("noop email: submission received",
		zap.String("to", toEmail),
		zap.String("name", toName),
		zap.String("submission_id", submissionID))
	return nil
}

func (s *noopSender) SendDecisionNotice(_ context.Context, toEmail, toName, submissionID, decision, summary string) error {
	s.log.Info("noop email: decision notice",
		zap.String("to", toEmail),
		zap.String("name", toName),
		zap.String("submission_id", submissionID),
		zap.String("decision", decision))
	return nil
}
