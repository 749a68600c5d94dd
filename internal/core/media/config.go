package media

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Config holds the transcoding limits.
type Config struct {
	// MaxDimension caps both width and height of the output, in pixels.
	MaxDimension int

	// Quality is the JPEG encoding quality (1-100).
	Quality int

	// MaxSourceSizeMB rejects raw uploads larger than this.
	MaxSourceSizeMB int

	// MaxSourcePixels rejects sources whose declared width x height exceeds
	// this, before any pixel data is decoded.
	MaxSourcePixels int

	// Workers bounds how many transcodes run at once.
	Workers int
}

// DefaultConfig returns the production transcoding limits.
func DefaultConfig() Config {
	return Config{
		MaxDimension:    800,
		Quality:         80,
		MaxSourceSizeMB: 10,
		MaxSourcePixels: 50_000_000,
		Workers:         4,
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.MaxDimension <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxDimension, c.MaxDimension)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, c.Quality)
	}
	if c.MaxSourceSizeMB <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxSourceSize, c.MaxSourceSizeMB)
	}
	if c.MaxSourcePixels <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxSourcePixels, c.MaxSourcePixels)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}

// MaxSourceBytes returns MaxSourceSizeMB in bytes.
func (c Config) MaxSourceBytes() int64 {
	return int64(c.MaxSourceSizeMB) * 1024 * 1024
}

// ConfigFromEnv creates a Config from environment variables.
// Uses defaults for any missing or unparseable values.
//
// Environment variables:
//   - MEDIA_MAX_DIMENSION: max output width/height in pixels (default: 800)
//   - MEDIA_QUALITY: JPEG quality 1-100 (default: 80)
//   - MEDIA_MAX_UPLOAD_MB: max raw upload size in MB (default: 10)
//   - MEDIA_MAX_SOURCE_PIXELS: max declared source width*height (default: 50000000)
//   - MEDIA_WORKERS: concurrent transcodes (default: 4)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.MaxDimension = intFromEnv("MEDIA_MAX_DIMENSION", cfg.MaxDimension)
	cfg.Quality = intFromEnv("MEDIA_QUALITY", cfg.Quality)
	cfg.MaxSourceSizeMB = intFromEnv("MEDIA_MAX_UPLOAD_MB", cfg.MaxSourceSizeMB)
	cfg.MaxSourcePixels = intFromEnv("MEDIA_MAX_SOURCE_PIXELS", cfg.MaxSourcePixels)
	cfg.Workers = intFromEnv("MEDIA_WORKERS", cfg.Workers)
	return cfg
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[MEDIA] ignoring invalid integer env var", "key", key, "value", raw, "error", err)
		return fallback
	}
	return v
}
