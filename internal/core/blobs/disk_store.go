package blobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// DiskStore implements Store on the local filesystem.
// Object path format: {basePath}/{id[len-2:]}/{id}
// where the shard directory keeps any single directory from growing unbounded.
type DiskStore struct {
	basePath  string
	publicURL string
}

// NewDiskStore creates a DiskStore rooted at basePath, creating it if needed.
// publicURL is the base the objects are served from (see Handler).
func NewDiskStore(basePath, publicURL string) (*DiskStore, error) {
	if basePath == "" {
		return nil, ErrMissingDiskPath
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &DiskStore{
		basePath:  basePath,
		publicURL: publicURL,
	}, nil
}

// objectPath constructs the filesystem path for a storage identifier.
// The identifier must already have passed ValidateStorageID.
func (s *DiskStore) objectPath(id string) string {
	shard := id[len(id)-2:]
	return filepath.Join(s.basePath, shard, id)
}

// Upload writes data as a new object. Uploading the same bytes twice yields
// two independent objects.
func (s *DiskStore) Upload(ctx context.Context, data []byte, mimeType string) (*BlobRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: data cannot be empty", ErrUploadFailed)
	}
	if !isValidMimeType(mimeType) {
		return nil, fmt.Errorf("%w: unsupported MIME type: %s", ErrUploadFailed, mimeType)
	}

	id, err := NewStorageID(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	path := s.objectPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	// Write to a temp file first then rename, so a crash never leaves a
	// partial object under a valid storage id.
	tmp, err := os.CreateTemp(filepath.Dir(path), id+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	slog.Debug("[MEDIA-DISK] stored object", "storage_id", id, "size_bytes", len(data))

	return &BlobRef{
		URL:       PublicURL(s.publicURL, id),
		StorageID: id,
		MimeType:  mimeType,
		Size:      len(data),
	}, nil
}

// Delete removes an object. Returns nil if it doesn't exist (idempotent delete).
func (s *DiskStore) Delete(ctx context.Context, storageID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	if err := ValidateStorageID(storageID); err != nil {
		return err
	}

	err := os.Remove(s.objectPath(storageID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}

// Handler serves stored objects at /{cid}. Mount it under the public URL path.
func (s *DiskStore) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := filepath.Base(r.URL.Path)
		if ValidateStorageID(id) != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.ServeFile(w, r, s.objectPath(id))
	})
}
