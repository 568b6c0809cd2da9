package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendSubmissionReceived(ctx context.Context, toEmail, toName, submissionID string) error {
	args := m.Called(ctx, toEmail, toName, submissionID)
	return args.Error(0)
}

func (m *MockEmailSender) SendDecisionNotice(ctx context.Context, toEmail, toName, submissionID, decision, summary string) error {
	args := m.Called(ctx, toEmail, toName, submissionID, decision, summary)
	return args.Error(0)
}
