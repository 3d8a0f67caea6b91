package ratelimit

import (
	"time"
)

// Config holds rate limiter configuration.
type Config struct {
	// Limit is the maximum number of requests allowed in the window
	Limit int

	// Window is the time window for the rate limit
	Window time.Duration

	// FallbackKey is used when no client key can be derived from a request
	FallbackKey string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Limit:       10,
		Window:      time.Minute,
		FallbackKey: "anonymous",
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithLimit sets the rate limit and its window.
func WithLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.Limit = limit
		c.Window = window
	}
}

// WithFallbackKey sets the key used for requests without a client identity.
func WithFallbackKey(key string) Option {
	return func(c *Config) {
		c.FallbackKey = key
	}
}
