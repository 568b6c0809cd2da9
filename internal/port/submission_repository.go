package port

import (
	"context"

	"github.com/google/uuid"

	"publicpulse/internal/domain"
)

// SubmissionRepository persists citizen submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, offset, limit int) ([]domain.Submission, int, error)
	ListByStatus(ctx context.Context, status domain.SubmissionStatus, offset, limit int) ([]domain.Submission, int, error)
	ListAll(ctx context.Context, offset, limit int) ([]domain.Submission, int, error)
	Update(ctx context.Context, sub *domain.Submission) error
	Delete(ctx context.Context, id uuid.UUID) error
}
