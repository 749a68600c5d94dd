package blobs

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUploadFailed is returned when an object could not be stored.
	ErrUploadFailed = errors.New("image upload failed")

	// ErrDeleteFailed is returned when an object could not be removed.
	ErrDeleteFailed = errors.New("image delete failed")

	// ErrInvalidStorageID is returned when a storage identifier is not a CID followed by an upload uuid.
	ErrInvalidStorageID = errors.New("invalid storage identifier")

	// ErrInvalidBackend is returned when MEDIA_STORE names an unknown backend.
	ErrInvalidBackend = errors.New("unknown media store backend")

	// ErrMissingStoreURL is returned when the blob backend has no endpoint configured.
	ErrMissingStoreURL = errors.New("MEDIA_STORE_URL is required for the blob backend")

	// ErrMissingDiskPath is returned when the disk backend has no base path configured.
	ErrMissingDiskPath = errors.New("MEDIA_DISK_PATH is required for the disk backend")

	// ErrInvalidTimeout is returned when Timeout is not positive.
	ErrInvalidTimeout = errors.New("Timeout must be positive")
)

// wrapTransportError classifies a transport failure under kind, keeping
// timeouts recognizable as context.DeadlineExceeded.
func wrapTransportError(kind error, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", kind, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w: %v", kind, context.DeadlineExceeded, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
