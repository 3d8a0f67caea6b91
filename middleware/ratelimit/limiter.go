package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements fixed window rate limiting with in-process counters.
// Counts are not shared across processes and reset on restart.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	startAt time.Time
}

// NewLimiter creates a new in-memory rate limiter.
func NewLimiter(limit int, windowSize time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  windowSize,
		windows: make(map[string]*window),
	}
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	Limit     int
}

// Allow checks if a request is allowed under the rate limit and counts it
// when allowed. The window for a key starts at its first request and resets
// lazily once it has elapsed.
func (l *Limiter) Allow(key string) *RateLimitResult {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.startAt) >= l.window {
		w = &window{startAt: now}
		l.windows[key] = w
	}

	resetAt := w.startAt.Add(l.window)
	if w.count >= l.limit {
		return &RateLimitResult{
			Allowed:   false,
			Remaining: 0,
			ResetAt:   resetAt,
			Limit:     l.limit,
		}
	}

	w.count++
	return &RateLimitResult{
		Allowed:   true,
		Remaining: l.limit - w.count,
		ResetAt:   resetAt,
		Limit:     l.limit,
	}
}

// Reset clears the rate limit for a specific key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}
