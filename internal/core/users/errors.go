package users

import "errors"

// Sentinel errors for common user operations
var (
	// ErrUserNotFound is returned when a user lookup finds no matching record
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyTaken is returned when creating a user with an email that belongs to another user
	ErrEmailAlreadyTaken = errors.New("email already taken")
)
