package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	domain "github.com/example/task-assistant/domain/task"
	"github.com/example/task-assistant/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides the task lifecycle engine as request-reply services.
type Module struct {
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
	dbPath   string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new task Module.
func NewModule() *Module {
	dbPath := os.Getenv("TASK_ASSISTANT_DB_PATH")
	if dbPath == "" {
		dbPath = "task_assistant.db"
	}
	return &Module{dbPath: dbPath}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "task"
}

// SetEventBus receives the application event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.TaskRestoredV1.ToBase(),
	}
}

// Start opens the database and initializes the engine.
func (m *Module) Start(_ context.Context) error {
	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(NewRepository(db))

	log.Printf("[task] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[task] Module stopped")
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

// RegisterServices registers the engine's request-reply services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	register := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
		return nil
	}

	if err := register("create-task", helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	)); err != nil {
		return err
	}
	if err := register("get-task", helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	)); err != nil {
		return err
	}
	if err := register("list-tasks", helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	)); err != nil {
		return err
	}
	if err := register("update-task", helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	)); err != nil {
		return err
	}
	if err := register("delete-task", helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	)); err != nil {
		return err
	}
	if err := register("restore-task", helper.RegisterTypedRequestReplyService(
		container, "restore-task", json.Unmarshal, json.Marshal, m.restoreTask,
	)); err != nil {
		return err
	}
	if err := register("list-history", helper.RegisterTypedRequestReplyService(
		container, "list-history", json.Unmarshal, json.Marshal, m.listHistory,
	)); err != nil {
		return err
	}
	if err := register("clear-completed", helper.RegisterTypedRequestReplyService(
		container, "clear-completed", json.Unmarshal, json.Marshal, m.clearCompleted,
	)); err != nil {
		return err
	}
	if err := register("purge-history", helper.RegisterTypedRequestReplyService(
		container, "purge-history", json.Unmarshal, json.Marshal, m.purgeHistory,
	)); err != nil {
		return err
	}

	log.Printf("[task] Registered services: create-task, get-task, list-tasks, update-task, delete-task, restore-task, list-history, clear-completed, purge-history")
	return nil
}

// createTask handles the create-task service request.
func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Create(ctx, req.UserID, req.Title, req.Description,
		domain.Status(req.Status), domain.Priority(req.Priority), req.DueDate)
	if err != nil {
		return TaskResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TaskCreatedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			UserID:    task.UserID,
			CreatedAt: task.CreatedAt,
		}
		if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
			// Event publishing is best-effort; log but don't fail the operation
			log.Printf("[task] Warning: failed to publish TaskCreated event for task %s: %v", task.ID, err)
		}
	}

	return toTaskResponse(task), nil
}

// getTask handles the get-task service request.
func (m *Module) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// listTasks handles the list-tasks service request.
func (m *Module) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.UserID, req.StatusFilter, req.SortOrder)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return toListResponse(tasks), nil
}

// updateTask handles the update-task service request.
func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, previous, err := m.service.Update(ctx, req.UserID, req.TaskID, UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return TaskResponse{}, err
	}

	if previous != domain.StatusCompleted && task.Status == domain.StatusCompleted {
		if m.eventBus != nil {
			event := events.TaskCompletedEvent{
				TaskID:      task.ID,
				Title:       task.Title,
				UserID:      task.UserID,
				CompletedAt: task.UpdatedAt,
			}
			if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
				log.Printf("[task] Warning: failed to publish TaskCompleted event for task %s: %v", task.ID, err)
			}
		}
	}

	return toTaskResponse(task), nil
}

// deleteTask handles the delete-task service request.
func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	task, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return DeleteTaskResponse{}, err
	}
	if err := m.service.SoftDelete(ctx, req.UserID, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{
			TaskID:    task.ID,
			Title:     task.Title,
			UserID:    task.UserID,
			DeletedAt: time.Now(),
		}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskDeleted event for task %s: %v", task.ID, err)
		}
	}

	return DeleteTaskResponse{Deleted: true}, nil
}

// restoreTask handles the restore-task service request.
func (m *Module) restoreTask(ctx context.Context, req RestoreTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Restore(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}

	if m.eventBus != nil {
		event := events.TaskRestoredEvent{
			TaskID:     task.ID,
			Title:      task.Title,
			UserID:     task.UserID,
			RestoredAt: task.UpdatedAt,
		}
		if err := events.TaskRestoredV1.Publish(m.eventBus, event, nil); err != nil {
			log.Printf("[task] Warning: failed to publish TaskRestored event for task %s: %v", task.ID, err)
		}
	}

	return toTaskResponse(task), nil
}

// listHistory handles the list-history service request.
func (m *Module) listHistory(ctx context.Context, req ListHistoryRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.ListHistory(ctx, req.UserID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return toListResponse(tasks), nil
}

// clearCompleted handles the clear-completed service request.
func (m *Module) clearCompleted(ctx context.Context, req ClearCompletedRequest, _ *mono.Msg) (ClearCompletedResponse, error) {
	count, err := m.service.ClearCompleted(ctx, req.UserID)
	if err != nil {
		return ClearCompletedResponse{}, err
	}
	return ClearCompletedResponse{Count: count}, nil
}

// purgeHistory handles the purge-history service request.
func (m *Module) purgeHistory(ctx context.Context, req PurgeHistoryRequest, _ *mono.Msg) (PurgeHistoryResponse, error) {
	count, err := m.service.PurgeHistory(ctx, req.UserID)
	if err != nil {
		return PurgeHistoryResponse{}, err
	}
	return PurgeHistoryResponse{Count: count}, nil
}

// toTaskResponse converts a domain Task to a TaskResponse.
func toTaskResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if task.DeletedAt.Valid {
		deletedAt := task.DeletedAt.Time
		resp.DeletedAt = &deletedAt
	}
	return resp
}

// toListResponse converts a slice of domain Tasks to a ListTasksResponse.
func toListResponse(tasks []*domain.Task) ListTasksResponse {
	resp := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, toTaskResponse(task))
	}
	return resp
}
