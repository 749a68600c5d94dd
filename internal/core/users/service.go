package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type userService struct {
	repo UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo UserRepository) Service {
	return &userService{repo: repo}
}

// GetUser resolves a user by id. Every call reads the store; user state is
// never cached across requests.
func (s *userService) GetUser(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
