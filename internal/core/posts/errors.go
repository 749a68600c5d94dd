package posts

import (
	"errors"
	"fmt"
	"net/http"

	"Snapfeed/internal/core/blobs"
	"Snapfeed/internal/core/media"
	"Snapfeed/internal/core/users"
)

// Sentinel errors for common post operations
var (
	// ErrMissingImage is returned when a post is created without an image
	ErrMissingImage = errors.New("image is required")

	// ErrPostNotFound is returned when a post id does not resolve
	ErrPostNotFound = errors.New("post not found")

	// ErrForbidden is returned when someone other than the owner deletes a post
	ErrForbidden = errors.New("only the post owner can delete this post")

	// ErrInvalidInput is returned for malformed caption or comment input
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable is returned when the post store cannot be reached
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTimeout is returned when an operation exceeds its deadline
	ErrTimeout = errors.New("operation timed out")
)

// Errors owned by collaborators, re-exported so callers can match every
// failure kind against this package.
var (
	ErrInvalidImage = media.ErrInvalidImage
	ErrUploadFailed = blobs.ErrUploadFailed
	ErrUserNotFound = users.ErrUserNotFound
)

// ValidationError represents a validation error with field context.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// Error kinds reported by Describe.
const (
	KindMissingImage       = "MissingImage"
	KindInvalidImage       = "InvalidImage"
	KindUploadFailed       = "UploadFailed"
	KindUserNotFound       = "UserNotFound"
	KindPostNotFound       = "PostNotFound"
	KindForbidden          = "Forbidden"
	KindInvalidInput       = "InvalidInput"
	KindStorageUnavailable = "StorageUnavailable"
	KindTimeout            = "Timeout"
	KindInternal           = "InternalServerError"
)

// Describe maps an error returned by Service to the (kind, HTTP status,
// message) triple the routing layer renders. Errors that match no kind are
// reported as an opaque internal error.
//
// Timeout is checked first: a deadline during upload also matches
// ErrUploadFailed, and the timeout is the more specific failure.
func Describe(err error) (kind string, status int, message string) {
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrTimeout):
		return KindTimeout, http.StatusGatewayTimeout, "The operation timed out"
	case errors.Is(err, ErrMissingImage):
		return KindMissingImage, http.StatusBadRequest, "An image is required"
	case errors.Is(err, ErrInvalidImage):
		return KindInvalidImage, http.StatusBadRequest, "The uploaded file is not a supported image"
	case errors.Is(err, ErrUploadFailed):
		return KindUploadFailed, http.StatusBadGateway, "Failed to store the image"
	case errors.Is(err, ErrUserNotFound):
		return KindUserNotFound, http.StatusNotFound, "User not found"
	case errors.Is(err, ErrPostNotFound):
		return KindPostNotFound, http.StatusNotFound, "Post not found"
	case errors.Is(err, ErrForbidden):
		return KindForbidden, http.StatusForbidden, "Only the post owner can delete this post"
	case errors.As(err, &valErr):
		return KindInvalidInput, http.StatusBadRequest, valErr.Message
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput, http.StatusBadRequest, "Invalid input"
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable, http.StatusServiceUnavailable, "Storage is temporarily unavailable"
	default:
		return KindInternal, http.StatusInternalServerError, "An internal error occurred"
	}
}
