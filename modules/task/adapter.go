package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps a ServiceContainer for type-safe cross-module access to
// the task engine. It implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for the task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "create-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	return &resp, nil
}

// GetTask retrieves an active task via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	req := GetTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "get-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-task service call failed: %w", err)
	}
	return &resp, nil
}

// ListTasks lists active tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-tasks", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-tasks service call failed: %w", err)
	}
	return &resp, nil
}

// UpdateTask partially updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "update-task", json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	return &resp, nil
}

// DeleteTask soft-deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, userID, taskID string) error {
	req := DeleteTaskRequest{UserID: userID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "delete-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", taskID)
	}
	return nil
}

// RestoreTask restores a history task via the restore-task service.
func (a *taskAdapter) RestoreTask(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	req := RestoreTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "restore-task", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("restore-task service call failed: %w", err)
	}
	return &resp, nil
}

// ListHistory lists soft-deleted tasks via the list-history service.
func (a *taskAdapter) ListHistory(ctx context.Context, userID string) (*ListTasksResponse, error) {
	req := ListHistoryRequest{UserID: userID}
	var resp ListTasksResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "list-history", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-history service call failed: %w", err)
	}
	return &resp, nil
}

// ClearCompleted soft-deletes all completed tasks via the clear-completed service.
func (a *taskAdapter) ClearCompleted(ctx context.Context, userID string) (int64, error) {
	req := ClearCompletedRequest{UserID: userID}
	var resp ClearCompletedResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "clear-completed", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return 0, fmt.Errorf("clear-completed service call failed: %w", err)
	}
	return resp.Count, nil
}

// PurgeHistory removes all history tasks via the purge-history service.
func (a *taskAdapter) PurgeHistory(ctx context.Context, userID string) (int64, error) {
	req := PurgeHistoryRequest{UserID: userID}
	var resp PurgeHistoryResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, "purge-history", json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return 0, fmt.Errorf("purge-history service call failed: %w", err)
	}
	return resp.Count, nil
}
