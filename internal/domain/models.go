package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents a registered portal user.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Submission represents a citizen's document submission moving through
// extraction, official review and admin decision.
type Submission struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	ApplicantID     uuid.UUID        `db:"applicant_id" json:"applicant_id"`
	DocumentType    DocumentType     `db:"document_type" json:"document_type"`
	Description     string           `db:"description" json:"description"`
	ImageKeys       ImageKeyList     `db:"image_keys" json:"image_keys"`
	ExtractedRecord json.RawMessage  `db:"extracted_record" json:"extracted_record"`
	Status          SubmissionStatus `db:"status" json:"status"`
	ReviewStatus    ReviewStatus     `db:"review_status" json:"review_status"`
	ReviewedBy      *uuid.UUID       `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt      *time.Time       `db:"reviewed_at" json:"reviewed_at"`
	ReviewerNotes   string           `db:"reviewer_notes" json:"reviewer_notes"`
	DecidedBy       *uuid.UUID       `db:"decided_by" json:"decided_by"`
	DecidedAt       *time.Time       `db:"decided_at" json:"decided_at"`
	DecisionSummary string           `db:"decision_summary" json:"decision_summary"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// ImageKeyList is a JSON-encoded list of object storage keys, stored in a
// single jsonb column.
type ImageKeyList []string

// Value implements driver.Valuer.
func (l ImageKeyList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *ImageKeyList) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = nil
		return nil
	}
	return fmt.Errorf("unsupported scan type %T for ImageKeyList", src)
}
