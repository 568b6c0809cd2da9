package port

import (
	"context"

	"github.com/google/uuid"

	"publicpulse/internal/domain"
)

// UserRepository persists portal users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
