package posts

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config holds the post service configuration
type Config struct {
	// OperationTimeout bounds every service operation, including transcode
	// and upload. Zero disables the bound.
	OperationTimeout time.Duration
}

// DefaultConfig returns the default post service configuration
func DefaultConfig() Config {
	return Config{
		OperationTimeout: 30 * time.Second,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.OperationTimeout < 0 {
		return fmt.Errorf("operation timeout must not be negative, got %v", c.OperationTimeout)
	}
	return nil
}

// ConfigFromEnv creates a Config from environment variables.
//
// Environment variables:
//   - POSTS_OP_TIMEOUT_SECONDS: per-operation timeout (default: 30, 0 disables)
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("POSTS_OP_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("[POSTS] ignoring invalid POSTS_OP_TIMEOUT_SECONDS", "value", v, "error", err)
		} else {
			cfg.OperationTimeout = time.Duration(secs) * time.Second
		}
	}
	return cfg
}
