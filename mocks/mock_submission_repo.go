package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"publicpulse/internal/domain"
)

// MockSubmissionRepo is a mock implementation of port.SubmissionRepository.
type MockSubmissionRepo struct {
	mock.Mock
}

func (m *MockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID, offset, limit int) ([]domain.Submission, int, error) {
	args := m.Called(ctx, applicantID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionRepo) ListByStatus(ctx context.Context, status domain.SubmissionStatus, offset, limit int) ([]domain.Submission, int, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionRepo) ListAll(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionRepo) Update(ctx context.Context, sub *domain.Submission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubmissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
