package task

import (
	"context"
	"strings"
	"time"

	domain "github.com/example/task-assistant/domain/task"
	"github.com/google/uuid"
)

// Service implements the task lifecycle engine: validation, state machine
// transitions, filtering and bulk operations. All operations are scoped to
// the owning user.
type Service struct {
	repo *Repository
}

// NewService creates a new task Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a new task. The status defaults to pending and
// the priority to medium when not supplied.
func (s *Service) Create(_ context.Context, userID, title, description string, status domain.Status, priority domain.Priority, dueDate *time.Time) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if status == "" {
		status = domain.StatusPending
	}
	if !domain.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, ErrInvalidPriority
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns active tasks filtered and sorted per request. An empty
// statusFilter means all statuses; sortOrder defaults to ascending.
func (s *Service) List(_ context.Context, userID, statusFilter, sortOrder string) ([]*domain.Task, error) {
	var status domain.Status
	if statusFilter != "" {
		status = domain.Status(statusFilter)
		if !domain.ValidStatus(status) {
			return nil, ErrInvalidStatusFilter
		}
	}

	descending := false
	switch sortOrder {
	case "", "asc":
	case "desc":
		descending = true
	default:
		return nil, ErrInvalidSortOrder
	}

	return s.repo.List(userID, status, descending)
}

// Get returns an active task owned by the user.
func (s *Service) Get(_ context.Context, userID, taskID string) (*domain.Task, error) {
	return s.repo.FindByID(userID, taskID)
}

// UpdatePatch holds the optional fields of a partial task update. Nil fields
// are left untouched.
type UpdatePatch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
}

// Update applies a partial update to an active task. It returns the updated
// task and its previous status so callers can detect completion transitions.
func (s *Service) Update(_ context.Context, userID, taskID string, patch UpdatePatch) (*domain.Task, domain.Status, error) {
	task, err := s.repo.FindByID(userID, taskID)
	if err != nil {
		return nil, "", err
	}
	previous := task.Status

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, "", ErrEmptyTitle
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		status := domain.Status(*patch.Status)
		if !domain.ValidStatus(status) {
			return nil, "", ErrInvalidStatus
		}
		task.Status = status
	}
	if patch.Priority != nil {
		priority := domain.Priority(*patch.Priority)
		if !domain.ValidPriority(priority) {
			return nil, "", ErrInvalidPriority
		}
		task.Priority = priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	task.UpdatedAt = time.Now()

	if err := s.repo.Save(task); err != nil {
		return nil, "", err
	}
	return task, previous, nil
}

// SoftDelete moves an active task to history.
func (s *Service) SoftDelete(_ context.Context, userID, taskID string) error {
	return s.repo.SoftDelete(userID, taskID)
}

// Restore brings a history task back to the active set with its pre-delete
// status unchanged.
func (s *Service) Restore(_ context.Context, userID, taskID string) (*domain.Task, error) {
	return s.repo.Restore(userID, taskID)
}

// ListHistory returns the user's soft-deleted tasks, most recently deleted
// first.
func (s *Service) ListHistory(_ context.Context, userID string) ([]*domain.Task, error) {
	return s.repo.ListHistory(userID)
}

// ClearCompleted soft-deletes all active completed tasks for the user.
func (s *Service) ClearCompleted(_ context.Context, userID string) (int64, error) {
	return s.repo.ClearCompleted(userID)
}

// PurgeHistory irreversibly removes all history tasks for the user.
func (s *Service) PurgeHistory(_ context.Context, userID string) (int64, error) {
	return s.repo.PurgeHistory(userID)
}
