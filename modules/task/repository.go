package task

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/task-assistant/domain/task"
	"gorm.io/gorm"
)

// Repository provides task persistence using GORM. Soft deletion is handled
// by gorm.DeletedAt: default queries see only active tasks, history queries
// go through Unscoped.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task.
func (r *Repository) Create(task *domain.Task) error {
	if err := r.db.Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves an active task owned by the given user.
func (r *Repository) FindByID(userID, taskID string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.First(&task, "id = ? AND user_id = ?", taskID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// List retrieves active tasks for a user, optionally filtered by status,
// sorted by creation time. Ties on created_at break by id ascending so that
// ordering is deterministic.
func (r *Repository) List(userID string, status domain.Status, descending bool) ([]*domain.Task, error) {
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	order := "created_at ASC, id ASC"
	if descending {
		order = "created_at DESC, id ASC"
	}

	var tasks []*domain.Task
	if err := query.Order(order).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Save persists changes to an existing task.
func (r *Repository) Save(task *domain.Task) error {
	if err := r.db.Save(task).Error; err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// SoftDelete moves an active task to history. Deleting a task that is
// already in history returns ErrNotFound.
func (r *Repository) SoftDelete(userID, taskID string) error {
	result := r.db.Where("id = ? AND user_id = ?", taskID, userID).Delete(&domain.Task{})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the deletion timestamp of a history task and returns it.
// The task keeps the status it had when deleted.
func (r *Repository) Restore(userID, taskID string) (*domain.Task, error) {
	result := r.db.Unscoped().Model(&domain.Task{}).
		Where("id = ? AND user_id = ? AND deleted_at IS NOT NULL", taskID, userID).
		Updates(map[string]any{"deleted_at": nil, "updated_at": time.Now()})
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("failed to restore task: %w", err)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(userID, taskID)
}

// ListHistory retrieves soft-deleted tasks for a user, most recently
// deleted first.
func (r *Repository) ListHistory(userID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.Unscoped().
		Where("user_id = ? AND deleted_at IS NOT NULL", userID).
		Order("deleted_at DESC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return tasks, nil
}

// ClearCompleted soft-deletes every active completed task for a user in a
// single statement and returns the number of tasks affected.
func (r *Repository) ClearCompleted(userID string) (int64, error) {
	result := r.db.Where("user_id = ? AND status = ?", userID, domain.StatusCompleted).
		Delete(&domain.Task{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return result.RowsAffected, nil
}

// PurgeHistory physically removes every history task for a user and returns
// the number of tasks removed. This is irreversible.
func (r *Repository) PurgeHistory(userID string) (int64, error) {
	result := r.db.Unscoped().
		Where("user_id = ? AND deleted_at IS NOT NULL", userID).
		Delete(&domain.Task{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to purge history: %w", err)
	}
	return result.RowsAffected, nil
}
