package users

import "context"

// UserRepository defines the interface for user data persistence
type UserRepository interface {
	// Create inserts a user and returns it with its generated fields set.
	Create(ctx context.Context, req CreateUserRequest) (*User, error)

	// GetByID retrieves a user, including the posts and savedPosts back-references.
	GetByID(ctx context.Context, id string) (*User, error)
}

// Service defines the read-side user operations the API layer needs
type Service interface {
	// GetUser resolves a user id. Malformed ids yield ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*User, error)
}
