package repository

import (
	"context"

	"campus-market/internal/domain"
)

// UserRepository defines persistence operations for User entities. Lookups
// that miss return domain.ErrNotFound.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches against the stored normalized email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}
