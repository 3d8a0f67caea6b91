package ratelimit

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// KeyFunc derives the rate limit key for a request, typically the
// authenticated user id. An empty return falls back to Config.FallbackKey.
type KeyFunc func(c *fiber.Ctx) string

// Middleware enforces a per-client request budget on the routes it wraps.
type Middleware struct {
	config  Config
	limiter *Limiter
	logger  *slog.Logger
}

// New creates a new rate limiting middleware.
func New(opts ...Option) *Middleware {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Middleware{
		config:  config,
		limiter: NewLimiter(config.Limit, config.Window),
		logger:  slog.Default(),
	}
}

// Handler returns a Fiber handler that rejects requests over the limit
// with 429 and a reset hint.
func (m *Middleware) Handler(keyFn KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFn(c)
		if key == "" {
			key = m.config.FallbackKey
		}

		result := m.limiter.Allow(key)
		if !result.Allowed {
			retryAfter := time.Until(result.ResetAt)
			if retryAfter < 0 {
				retryAfter = 0
			}

			m.logger.Warn("Rate limit exceeded",
				"key", key,
				"limit", result.Limit,
				"reset_at", result.ResetAt)

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":               "rate limit exceeded, please slow down",
				"limit":               result.Limit,
				"retry_after_seconds": int(retryAfter.Seconds()) + 1,
			})
		}

		return c.Next()
	}
}
