package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		result := limiter.Allow("user-1")
		if !result.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if result.Remaining != 3-i-1 {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 3-i-1, result.Remaining)
		}
		if result.Limit != 3 {
			t.Errorf("expected limit 3, got %d", result.Limit)
		}
	}

	result := limiter.Allow("user-1")
	if result.Allowed {
		t.Error("request over the limit should be denied")
	}
	if result.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", result.Remaining)
	}
	if result.ResetAt.Before(time.Now()) {
		t.Error("expected reset time in the future")
	}
}

func TestLimiter_PerKeyIsolation(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)

	if !limiter.Allow("user-1").Allowed {
		t.Fatal("first request for user-1 should be allowed")
	}
	if limiter.Allow("user-1").Allowed {
		t.Error("second request for user-1 should be denied")
	}
	if !limiter.Allow("user-2").Allowed {
		t.Error("user-2 should have their own budget")
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	limiter := NewLimiter(1, 20*time.Millisecond)

	if !limiter.Allow("user-1").Allowed {
		t.Fatal("first request should be allowed")
	}
	if limiter.Allow("user-1").Allowed {
		t.Fatal("second request inside the window should be denied")
	}

	time.Sleep(25 * time.Millisecond)

	if !limiter.Allow("user-1").Allowed {
		t.Error("request after the window elapsed should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter := NewLimiter(1, time.Minute)

	limiter.Allow("user-1")
	if limiter.Allow("user-1").Allowed {
		t.Fatal("second request should be denied")
	}

	limiter.Reset("user-1")

	if !limiter.Allow("user-1").Allowed {
		t.Error("request after Reset() should be allowed")
	}
}
