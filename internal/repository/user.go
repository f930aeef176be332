package repository

import (
	"context"

	"userboard/internal/domain"
)

// UserRepository defines persistence operations for User entities. Each
// call runs inside its own transaction.
type UserRepository interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	Patch(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
