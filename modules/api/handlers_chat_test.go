package api

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/example/task-assistant/domain/user"
	"github.com/example/task-assistant/middleware/ratelimit"
	"github.com/example/task-assistant/modules/chat"
	"github.com/gofiber/fiber/v2"
)

// fakeChatPort counts router calls so tests can assert a rejected request
// never reached the conversation router.
type fakeChatPort struct {
	sendCalls []*chat.SendMessageRequest
}

func (f *fakeChatPort) SendMessage(_ context.Context, req *chat.SendMessageRequest) (*chat.SendMessageResponse, error) {
	f.sendCalls = append(f.sendCalls, req)
	return &chat.SendMessageResponse{ConversationID: "conv-1", Reply: "noted", Intent: "unknown"}, nil
}

func (f *fakeChatPort) ListConversations(_ context.Context, _ string) (*chat.ListConversationsResponse, error) {
	return &chat.ListConversationsResponse{}, nil
}

func (f *fakeChatPort) GetConversation(_ context.Context, _, _ string) (*chat.GetConversationResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeChatPort) DeleteConversation(_ context.Context, _, _ string) error {
	return errors.New("not implemented")
}

func TestSendMessage_RateLimitStopsBeforeRouter(t *testing.T) {
	mockAuth := &mockAuthPort{
		validateTokenFunc: func(_ context.Context, _ string) (*domain.Claims, error) {
			return &domain.Claims{UserID: "user-1", Email: "alice@example.com"}, nil
		},
	}
	fakeChat := &fakeChatPort{}
	handlers := NewHandlers(nil, mockAuth, nil, fakeChat, nil)
	limiter := ratelimit.New(ratelimit.WithLimit(2, time.Minute))

	app := fiber.New()
	app.Use(AuthMiddleware(mockAuth))
	app.Post("/chat", limiter.Handler(currentUserID), handlers.SendMessage)

	send := func() (int, string) {
		req := httptest.NewRequest("POST", "/chat", strings.NewReader(`{"message":"hello"}`))
		req.Header.Set("Authorization", "Bearer valid-token")
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("io.ReadAll() error = %v", err)
		}
		return resp.StatusCode, string(body)
	}

	for i := 0; i < 2; i++ {
		if status, body := send(); status != fiber.StatusOK {
			t.Fatalf("request %d: status = %d, body = %s", i+1, status, body)
		}
	}

	status, body := send()
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 past the limit, got %d", status)
	}
	if !strings.Contains(body, "rate limit exceeded") {
		t.Errorf("expected rate limit message, got %s", body)
	}

	if len(fakeChat.sendCalls) != 2 {
		t.Errorf("rejected message must not reach the conversation router, got %d calls", len(fakeChat.sendCalls))
	}
	for i, call := range fakeChat.sendCalls {
		if call.UserID != "user-1" {
			t.Errorf("call %d: expected authenticated user id, got %q", i, call.UserID)
		}
	}
}
