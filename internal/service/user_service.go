package service

import (
	"context"

	"userboard/internal/domain"
	"userboard/internal/password"
	"userboard/internal/repository"
)

// UserService describes user lifecycle operations. Inputs are assumed to
// be already validated; the service owns credential hashing so plaintext
// never reaches the repository.
type UserService interface {
	Create(ctx context.Context, username, plaintext string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Patch(ctx context.Context, id int64, username, plaintext *string) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Create(ctx context.Context, username, plaintext string) (*domain.User, error) {
	hash, err := password.Hash(plaintext)
	if err != nil {
		return nil, err
	}
	return s.users.Create(ctx, username, hash)
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// Patch re-hashes the password when one is supplied, including an
// explicitly supplied empty string. Nil fields stay untouched.
func (s *userService) Patch(ctx context.Context, id int64, username, plaintext *string) (*domain.User, error) {
	patch := domain.UserPatch{Username: username}
	if plaintext != nil {
		hash, err := password.Hash(*plaintext)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}
	return s.users.Patch(ctx, id, patch)
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
