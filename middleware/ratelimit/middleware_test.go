package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Limit != 10 {
		t.Errorf("expected Limit 10, got %d", cfg.Limit)
	}
	if cfg.Window != time.Minute {
		t.Errorf("expected Window 1m, got %v", cfg.Window)
	}
	if cfg.FallbackKey != "anonymous" {
		t.Errorf("expected FallbackKey 'anonymous', got %q", cfg.FallbackKey)
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	WithLimit(5, 30*time.Second)(&cfg)
	WithFallbackKey("unknown")(&cfg)

	if cfg.Limit != 5 {
		t.Errorf("expected Limit 5, got %d", cfg.Limit)
	}
	if cfg.Window != 30*time.Second {
		t.Errorf("expected Window 30s, got %v", cfg.Window)
	}
	if cfg.FallbackKey != "unknown" {
		t.Errorf("expected FallbackKey 'unknown', got %q", cfg.FallbackKey)
	}
}

func TestHandler_EnforcesLimit(t *testing.T) {
	m := New(WithLimit(2, time.Minute))

	app := fiber.New()
	app.Post("/chat", m.Handler(func(c *fiber.Ctx) string {
		return c.Get("X-Test-User")
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(user string) int {
		req := httptest.NewRequest("POST", "/chat", nil)
		req.Header.Set("X-Test-User", user)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := send("user-1"); code != fiber.StatusOK {
		t.Errorf("request 1: expected 200, got %d", code)
	}
	if code := send("user-1"); code != fiber.StatusOK {
		t.Errorf("request 2: expected 200, got %d", code)
	}
	if code := send("user-1"); code != fiber.StatusTooManyRequests {
		t.Errorf("request 3: expected 429, got %d", code)
	}

	// Budgets are per key
	if code := send("user-2"); code != fiber.StatusOK {
		t.Errorf("other user: expected 200, got %d", code)
	}
}

func TestHandler_FallbackKey(t *testing.T) {
	m := New(WithLimit(1, time.Minute))

	app := fiber.New()
	app.Post("/chat", m.Handler(func(c *fiber.Ctx) string {
		return ""
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("POST", "/chat", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	// All keyless requests share the fallback budget
	req = httptest.NewRequest("POST", "/chat", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", resp.StatusCode)
	}
}
