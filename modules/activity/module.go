package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/task-assistant/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// maxEntriesPerUser caps the in-memory feed; old entries are dropped first.
const maxEntriesPerUser = 100

// Entry is one row in a user's activity feed.
type Entry struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// ListActivityRequest asks for a user's recent activity, newest first.
type ListActivityRequest struct {
	UserID string `json:"user_id"`
}

// ListActivityResponse holds the feed entries.
type ListActivityResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Module records task lifecycle events into a per-user activity feed. The
// feed is in-memory and bounded; it is a convenience view, not a journal.
type Module struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)

// NewModule creates a new activity Module.
func NewModule() *Module {
	return &Module{entries: make(map[string][]Entry)}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// Start begins listening for task events.
func (m *Module) Start(_ context.Context) error {
	log.Println("[activity] Module started - listening for task events")
	return nil
}

// Stop shuts the module down.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}

// RegisterEventConsumers subscribes to the task lifecycle events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskRestoredV1, m.handleTaskRestored, m); err != nil {
		return fmt.Errorf("failed to register TaskRestored consumer: %w", err)
	}

	log.Printf("[activity] Registered event consumers: TaskCreated, TaskCompleted, TaskDeleted, TaskRestored")
	return nil
}

// RegisterServices registers the feed's request-reply service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-activity", json.Unmarshal, json.Marshal, m.listActivity,
	); err != nil {
		return fmt.Errorf("failed to register list-activity service: %w", err)
	}

	log.Printf("[activity] Registered services: list-activity")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{TaskID: event.TaskID, Title: event.Title, Action: "created", Timestamp: event.CreatedAt})
	return nil
}

func (m *Module) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{TaskID: event.TaskID, Title: event.Title, Action: "completed", Timestamp: event.CompletedAt})
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{TaskID: event.TaskID, Title: event.Title, Action: "deleted", Timestamp: event.DeletedAt})
	return nil
}

func (m *Module) handleTaskRestored(_ context.Context, event events.TaskRestoredEvent, _ *mono.Msg) error {
	m.record(event.UserID, Entry{TaskID: event.TaskID, Title: event.Title, Action: "restored", Timestamp: event.RestoredAt})
	return nil
}

func (m *Module) record(userID string, entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	feed := append(m.entries[userID], entry)
	if len(feed) > maxEntriesPerUser {
		feed = feed[len(feed)-maxEntriesPerUser:]
	}
	m.entries[userID] = feed
}

// listActivity handles the list-activity service request. Entries are
// returned newest first.
func (m *Module) listActivity(_ context.Context, req ListActivityRequest, _ *mono.Msg) (ListActivityResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	feed := m.entries[req.UserID]
	entries := make([]Entry, 0, len(feed))
	for i := len(feed) - 1; i >= 0; i-- {
		entries = append(entries, feed[i])
	}
	return ListActivityResponse{Entries: entries, Total: len(entries)}, nil
}
