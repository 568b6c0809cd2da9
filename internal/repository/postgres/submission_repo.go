package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"publicpulse/internal/domain"
	"publicpulse/internal/port"
)

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	query := `INSERT INTO submissions (id, applicant_id, document_type, description, image_keys,
		extracted_record, status, review_status, reviewed_by, reviewed_at, reviewer_notes,
		decided_by, decided_at, decision_summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.ApplicantID, sub.DocumentType, sub.Description, sub.ImageKeys,
		sub.ExtractedRecord, sub.Status, sub.ReviewStatus, sub.ReviewedBy, sub.ReviewedAt,
		sub.ReviewerNotes, sub.DecidedBy, sub.DecidedAt, sub.DecisionSummary,
		sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.Create: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.GetContext(ctx, &sub,
		"SELECT * FROM submissions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetByID: %w", err)
	}
	return &sub, nil
}

func (r *submissionRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID, offset, limit int) ([]domain.Submission, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM submissions WHERE applicant_id = $1", applicantID)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListByApplicant count: %w", err)
	}

	var subs []domain.Submission
	err = r.db.SelectContext(ctx, &subs,
		`SELECT * FROM submissions WHERE applicant_id = $1
		ORDER BY created_at DESC OFFSET $2 LIMIT $3`, applicantID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListByApplicant: %w", err)
	}
	return subs, total, nil
}

func (r *submissionRepo) ListByStatus(ctx context.Context, status domain.SubmissionStatus, offset, limit int) ([]domain.Submission, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM submissions WHERE status = $1", status)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListByStatus count: %w", err)
	}

	var subs []domain.Submission
	err = r.db.SelectContext(ctx, &subs,
		`SELECT * FROM submissions WHERE status = $1
		ORDER BY created_at ASC OFFSET $2 LIMIT $3`, status, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListByStatus: %w", err)
	}
	return subs, total, nil
}

func (r *submissionRepo) ListAll(ctx context.Context, offset, limit int) ([]domain.Submission, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM submissions")
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListAll count: %w", err)
	}

	var subs []domain.Submission
	err = r.db.SelectContext(ctx, &subs,
		"SELECT * FROM submissions ORDER BY created_at DESC OFFSET $1 LIMIT $2", offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.ListAll: %w", err)
	}
	return subs, total, nil
}

func (r *submissionRepo) Update(ctx context.Context, sub *domain.Submission) error {
	sub.UpdatedAt = time.Now().UTC()

	query := `UPDATE submissions SET document_type = $2, description = $3, image_keys = $4,
		extracted_record = $5, status = $6, review_status = $7, reviewed_by = $8,
		reviewed_at = $9, reviewer_notes = $10, decided_by = $11, decided_at = $12,
		decision_summary = $13, updated_at = $14 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.DocumentType, sub.Description, sub.ImageKeys,
		sub.ExtractedRecord, sub.Status, sub.ReviewStatus, sub.ReviewedBy,
		sub.ReviewedAt, sub.ReviewerNotes, sub.DecidedBy, sub.DecidedAt,
		sub.DecisionSummary, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.Update: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submissionRepo.Update: %w", err)
	}
	if rows == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *submissionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM submissions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("submissionRepo.Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submissionRepo.Delete: %w", err)
	}
	if rows == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}
