package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	domain "github.com/example/task-assistant/domain/conversation"
	"github.com/example/task-assistant/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides the conversational command router as request-reply
// services. It depends on the task module for task mutations.
type Module struct {
	db      *gorm.DB
	service *ChatService
	tasks   task.TaskPort
	dbPath  string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new chat Module.
func NewModule() *Module {
	dbPath := os.Getenv("TASK_ASSISTANT_DB_PATH")
	if dbPath == "" {
		dbPath = "task_assistant.db"
	}
	return &Module{dbPath: dbPath}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Dependencies declares the modules this module needs.
func (m *Module) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.tasks = task.NewTaskAdapter(container)
	}
}

// Start opens the database and wires the router.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Conversation{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	timeout := loadTimeout()
	sessions := NewSessionManager(NewConversationRepository(db))
	m.service = NewChatService(sessions, m.tasks, NewRuleExtractor(), loadResponder(timeout),
		WithMaxMessageLength(envInt("CHAT_MAX_MESSAGE_LENGTH")),
		WithContextTurns(envInt("CHAT_CONTEXT_MESSAGES")),
		WithResponderTimeout(timeout),
	)

	log.Printf("[chat] Module started (database: %s)", m.dbPath)
	return nil
}

// loadTimeout reads the conversational reply deadline from the environment.
// Zero means "use the default".
func loadTimeout() time.Duration {
	v := os.Getenv("CHAT_TIMEOUT_SECONDS")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[chat] Warning: invalid CHAT_TIMEOUT_SECONDS %q, using default", v)
		return 0
	}
	return time.Duration(n) * time.Second
}

// envInt reads an integer environment variable, returning 0 when unset
// or malformed.
func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[chat] Warning: invalid %s %q, using default", key, v)
		return 0
	}
	return n
}

// loadResponder builds the conversational responder from the environment.
// Without an API key the router falls back to canned replies.
func loadResponder(timeout time.Duration) Responder {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Println("[chat] GROQ_API_KEY not set, conversational replies will use canned responses")
		return nil
	}

	return NewGroqResponder(GroqConfig{
		APIKey:  apiKey,
		Model:   os.Getenv("GROQ_MODEL"),
		Timeout: timeout,
	})
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not initialized"}
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("failed to get database connection: %v", err)}
	}
	if err := sqlDB.Ping(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("database ping failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath},
	}
}

// RegisterServices registers the router's request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	register := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
		return nil
	}

	if err := register(ServiceSendMessage, helper.RegisterTypedRequestReplyService(
		container, ServiceSendMessage, json.Unmarshal, json.Marshal, m.sendMessage,
	)); err != nil {
		return err
	}
	if err := register(ServiceListConversations, helper.RegisterTypedRequestReplyService(
		container, ServiceListConversations, json.Unmarshal, json.Marshal, m.listConversations,
	)); err != nil {
		return err
	}
	if err := register(ServiceGetConversation, helper.RegisterTypedRequestReplyService(
		container, ServiceGetConversation, json.Unmarshal, json.Marshal, m.getConversation,
	)); err != nil {
		return err
	}
	if err := register(ServiceDeleteConversation, helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteConversation, json.Unmarshal, json.Marshal, m.deleteConversation,
	)); err != nil {
		return err
	}

	log.Printf("[chat] Registered services: %s, %s, %s, %s",
		ServiceSendMessage, ServiceListConversations, ServiceGetConversation, ServiceDeleteConversation)
	return nil
}

// sendMessage handles the send-message service request.
func (m *Module) sendMessage(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	resp, err := m.service.SendMessage(ctx, &req)
	if err != nil {
		return SendMessageResponse{}, err
	}
	return *resp, nil
}

// listConversations handles the list-conversations service request.
func (m *Module) listConversations(_ context.Context, req ListConversationsRequest, _ *mono.Msg) (ListConversationsResponse, error) {
	resp, err := m.service.ListConversations(req.UserID)
	if err != nil {
		return ListConversationsResponse{}, err
	}
	return *resp, nil
}

// getConversation handles the get-conversation service request.
func (m *Module) getConversation(_ context.Context, req GetConversationRequest, _ *mono.Msg) (GetConversationResponse, error) {
	resp, err := m.service.GetConversation(req.UserID, req.ConversationID)
	if err != nil {
		return GetConversationResponse{}, err
	}
	return *resp, nil
}

// deleteConversation handles the delete-conversation service request.
func (m *Module) deleteConversation(_ context.Context, req DeleteConversationRequest, _ *mono.Msg) (DeleteConversationResponse, error) {
	if err := m.service.DeleteConversation(req.UserID, req.ConversationID); err != nil {
		return DeleteConversationResponse{}, err
	}
	return DeleteConversationResponse{Deleted: true}, nil
}
