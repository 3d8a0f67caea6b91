package task

import (
	"context"
	"time"
)

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for listing active tasks.
type ListTasksRequest struct {
	UserID       string `json:"user_id"`
	StatusFilter string `json:"status_filter,omitempty"`
	SortOrder    string `json:"sort_order,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// UpdateTaskRequest is the request for partially updating a task. Nil fields
// are left untouched.
type UpdateTaskRequest struct {
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// DeleteTaskRequest is the request for soft-deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteTaskResponse is the response for soft-deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// RestoreTaskRequest is the request for restoring a history task.
type RestoreTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// ListHistoryRequest is the request for listing soft-deleted tasks.
type ListHistoryRequest struct {
	UserID string `json:"user_id"`
}

// ClearCompletedRequest is the request for clearing completed tasks.
type ClearCompletedRequest struct {
	UserID string `json:"user_id"`
}

// ClearCompletedResponse reports how many tasks were moved to history.
type ClearCompletedResponse struct {
	Count int64 `json:"count"`
}

// PurgeHistoryRequest is the request for purging history.
type PurgeHistoryRequest struct {
	UserID string `json:"user_id"`
}

// PurgeHistoryResponse reports how many tasks were removed.
type PurgeHistoryResponse struct {
	Count int64 `json:"count"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// TaskPort defines the interface for task lifecycle operations. This is the
// contract that driving adapters (HTTP API, chat router) use to interact
// with the engine.
type TaskPort interface {
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	GetTask(ctx context.Context, userID, taskID string) (*TaskResponse, error)
	ListTasks(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, userID, taskID string) error
	RestoreTask(ctx context.Context, userID, taskID string) (*TaskResponse, error)
	ListHistory(ctx context.Context, userID string) (*ListTasksResponse, error)
	ClearCompleted(ctx context.Context, userID string) (int64, error)
	PurgeHistory(ctx context.Context, userID string) (int64, error)
}
