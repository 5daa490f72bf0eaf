package remote

import (
	"os"
	"strconv"
)

// Config holds configuration for the remote time store client.
type Config struct {
	Endpoint   string
	APIToken   string
	TimeoutMs  int
	MaxRetries int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:8780",
		TimeoutMs:  10000,
		MaxRetries: 1,
	}
}

// LoadConfig reads client configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("TIMECLOCK_API_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("TIMECLOCK_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("TIMECLOCK_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("TIMECLOCK_API_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	return cfg
}
