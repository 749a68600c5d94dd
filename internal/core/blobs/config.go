package blobs

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Backend selects the Store implementation.
type Backend string

const (
	// BackendBlob uses the remote HTTP object store.
	BackendBlob Backend = "blob"
	// BackendDisk stores objects on the local filesystem.
	BackendDisk Backend = "disk"
)

// Config holds the media store configuration.
type Config struct {
	Backend Backend

	// URL is the object store API endpoint (blob backend).
	URL string

	// PublicURL is the base URL objects are served from. For the blob backend
	// it defaults to {URL}/objects.
	PublicURL string

	// Token authenticates requests to the object store (blob backend).
	Token string

	// DiskPath is the directory objects are written to (disk backend).
	DiskPath string

	// Timeout bounds each request to the object store.
	Timeout time.Duration
}

// DefaultConfig returns a Config for local development.
func DefaultConfig() Config {
	return Config{
		Backend:   BackendDisk,
		PublicURL: "http://localhost:8080/media",
		DiskPath:  "./data/media",
		Timeout:   30 * time.Second,
	}
}

// Validate checks the configuration for the selected backend.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidTimeout, c.Timeout)
	}
	switch c.Backend {
	case BackendBlob:
		if c.URL == "" {
			return ErrMissingStoreURL
		}
	case BackendDisk:
		if c.DiskPath == "" {
			return ErrMissingDiskPath
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables.
//
// Environment variables:
//   - MEDIA_STORE: "blob" or "disk" (default: disk)
//   - MEDIA_STORE_URL: object store API endpoint
//   - MEDIA_STORE_PUBLIC_URL: base URL objects are served from
//   - MEDIA_STORE_TOKEN: bearer token for the object store
//   - MEDIA_DISK_PATH: directory for the disk backend (default: ./data/media)
//   - MEDIA_STORE_TIMEOUT_SECONDS: per-request timeout (default: 30)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("MEDIA_STORE"); v != "" {
		cfg.Backend = Backend(v)
	}
	if v := os.Getenv("MEDIA_STORE_URL"); v != "" {
		cfg.URL = v
		// A remote store serves its own objects unless told otherwise.
		cfg.PublicURL = ""
	}
	if v := os.Getenv("MEDIA_STORE_PUBLIC_URL"); v != "" {
		cfg.PublicURL = v
	}
	cfg.Token = os.Getenv("MEDIA_STORE_TOKEN")
	if v := os.Getenv("MEDIA_DISK_PATH"); v != "" {
		cfg.DiskPath = v
	}
	if v := os.Getenv("MEDIA_STORE_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("[MEDIA] ignoring invalid MEDIA_STORE_TIMEOUT_SECONDS", "value", v, "error", err)
		} else {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

// NewStore builds the Store selected by cfg.
func NewStore(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendBlob:
		return NewHTTPStore(cfg), nil
	default:
		return NewDiskStore(cfg.DiskPath, cfg.PublicURL)
	}
}
