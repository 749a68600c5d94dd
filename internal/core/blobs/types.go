package blobs

import (
	"context"
	"net/url"
	"strings"
)

// BlobRef identifies an uploaded object in the remote media store.
type BlobRef struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId"`
	MimeType  string `json:"-"`
	Size      int    `json:"-"`
}

// Store uploads and deletes image objects. Each upload is a distinct object.
type Store interface {
	// Upload stores data and returns its durable URL and storage identifier.
	// Any failure is reported as ErrUploadFailed; callers must not assume the
	// object exists afterwards.
	Upload(ctx context.Context, data []byte, mimeType string) (*BlobRef, error)

	// Delete removes the object with the given storage identifier.
	// Deleting an object that does not exist succeeds.
	Delete(ctx context.Context, storageID string) error
}

// PublicURL joins the store's public base URL with a storage identifier.
// Returns empty string if either part is empty.
func PublicURL(baseURL, storageID string) string {
	if baseURL == "" || storageID == "" {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + url.PathEscape(storageID)
}

// isValidMimeType checks if the MIME type is allowed for uploads
func isValidMimeType(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}
