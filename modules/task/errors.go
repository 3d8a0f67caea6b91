package task

import "errors"

var (
	// ErrNotFound is returned when a task does not exist, belongs to another
	// user, or is in the wrong lifecycle state for the operation.
	ErrNotFound = errors.New("task not found")
	// ErrEmptyTitle is returned when a title is empty after trimming.
	ErrEmptyTitle = errors.New("task title must not be empty")
	// ErrInvalidStatus is returned for statuses outside pending/in_progress/completed.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority is returned for priorities outside low/medium/high.
	ErrInvalidPriority = errors.New("invalid task priority")
	// ErrInvalidStatusFilter is returned for unknown list filters.
	ErrInvalidStatusFilter = errors.New("status_filter must be 'pending', 'in_progress', or 'completed'")
	// ErrInvalidSortOrder is returned for unknown sort orders.
	ErrInvalidSortOrder = errors.New("sort_order must be 'asc' or 'desc'")
)
