package task

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/task-assistant/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func setupService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewRepository(setupTestDB(t)))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	t.Run("defaults", func(t *testing.T) {
		task, err := svc.Create(ctx, "user-1", "buy milk", "", "", "", nil)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if task.ID == "" {
			t.Error("expected non-empty task ID")
		}
		if task.Status != domain.StatusPending {
			t.Errorf("expected status %q, got %q", domain.StatusPending, task.Status)
		}
		if task.Priority != domain.PriorityMedium {
			t.Errorf("expected priority %q, got %q", domain.PriorityMedium, task.Priority)
		}
		if task.DeletedAt.Valid {
			t.Error("expected new task to not be deleted")
		}
	})

	t.Run("explicit status and priority", func(t *testing.T) {
		task, err := svc.Create(ctx, "user-1", "write report", "quarterly numbers",
			domain.StatusInProgress, domain.PriorityHigh, nil)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if task.Status != domain.StatusInProgress {
			t.Errorf("expected status %q, got %q", domain.StatusInProgress, task.Status)
		}
		if task.Priority != domain.PriorityHigh {
			t.Errorf("expected priority %q, got %q", domain.PriorityHigh, task.Priority)
		}
	})

	t.Run("title is trimmed", func(t *testing.T) {
		task, err := svc.Create(ctx, "user-1", "  call dentist  ", "", "", "", nil)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if task.Title != "call dentist" {
			t.Errorf("expected trimmed title, got %q", task.Title)
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		if _, err := svc.Create(ctx, "user-1", "   ", "", "", "", nil); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("expected ErrEmptyTitle, got %v", err)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		if _, err := svc.Create(ctx, "user-1", "x", "", "archived", "", nil); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		if _, err := svc.Create(ctx, "user-1", "x", "", "", "critical", nil); !errors.Is(err, ErrInvalidPriority) {
			t.Errorf("expected ErrInvalidPriority, got %v", err)
		}
	})
}

func TestService_GetAndList(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	created, err := svc.Create(ctx, "user-1", "buy milk", "", "", "", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := svc.Get(ctx, "user-1", created.ID)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.Title != "buy milk" {
			t.Errorf("expected title 'buy milk', got %q", got.Title)
		}
	})

	t.Run("get scoped to owner", func(t *testing.T) {
		if _, err := svc.Get(ctx, "user-2", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound for other user, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.Get(ctx, "user-1", "no-such-id"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("invalid status filter", func(t *testing.T) {
		if _, err := svc.List(ctx, "user-1", "archived", ""); !errors.Is(err, ErrInvalidStatusFilter) {
			t.Errorf("expected ErrInvalidStatusFilter, got %v", err)
		}
	})

	t.Run("invalid sort order", func(t *testing.T) {
		if _, err := svc.List(ctx, "user-1", "", "sideways"); !errors.Is(err, ErrInvalidSortOrder) {
			t.Errorf("expected ErrInvalidSortOrder, got %v", err)
		}
	})
}

func TestService_ListOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := svc.Create(ctx, "user-1", title, "", "", "", nil); err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
		// SQLite timestamps have limited resolution; keep creation order distinct
		time.Sleep(5 * time.Millisecond)
	}

	completed := string(domain.StatusCompleted)
	tasks, err := svc.List(ctx, "user-1", "", "asc")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, _, err := svc.Update(ctx, "user-1", tasks[1].ID, UpdatePatch{Status: &completed}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	t.Run("ascending by creation time", func(t *testing.T) {
		tasks, err := svc.List(ctx, "user-1", "", "asc")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		for i, want := range titles {
			if tasks[i].Title != want {
				t.Errorf("position %d: expected %q, got %q", i, want, tasks[i].Title)
			}
		}
	})

	t.Run("descending reverses the order", func(t *testing.T) {
		tasks, err := svc.List(ctx, "user-1", "", "desc")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if tasks[0].Title != "third" || tasks[2].Title != "first" {
			t.Errorf("unexpected descending order: %q, %q, %q", tasks[0].Title, tasks[1].Title, tasks[2].Title)
		}
	})

	t.Run("filter by status", func(t *testing.T) {
		tasks, err := svc.List(ctx, "user-1", completed, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "second" {
			t.Fatalf("expected only 'second' completed, got %d tasks", len(tasks))
		}
	})

	t.Run("scoped per user", func(t *testing.T) {
		tasks, err := svc.List(ctx, "user-2", "", "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected no tasks for other user, got %d", len(tasks))
		}
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	created, err := svc.Create(ctx, "user-1", "buy milk", "", "", "", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("partial update leaves other fields", func(t *testing.T) {
		title := "buy oat milk"
		updated, previous, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Title: &title})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if previous != domain.StatusPending {
			t.Errorf("expected previous status pending, got %q", previous)
		}
		if updated.Title != "buy oat milk" {
			t.Errorf("expected updated title, got %q", updated.Title)
		}
		if updated.Status != domain.StatusPending {
			t.Errorf("expected status unchanged, got %q", updated.Status)
		}
	})

	t.Run("completion transition reported", func(t *testing.T) {
		completed := string(domain.StatusCompleted)
		updated, previous, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Status: &completed})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if previous == domain.StatusCompleted {
			t.Error("expected previous status to not be completed")
		}
		if updated.Status != domain.StatusCompleted {
			t.Errorf("expected completed status, got %q", updated.Status)
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		empty := "  "
		if _, _, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Title: &empty}); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("expected ErrEmptyTitle, got %v", err)
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		title := "x"
		if _, _, err := svc.Update(ctx, "user-1", "no-such-id", UpdatePatch{Title: &title}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestService_DeleteRestorePurge(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	created, err := svc.Create(ctx, "user-1", "buy milk", "", "", "", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	inProgress := string(domain.StatusInProgress)
	if _, _, err := svc.Update(ctx, "user-1", created.ID, UpdatePatch{Status: &inProgress}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	t.Run("delete moves task to history", func(t *testing.T) {
		if err := svc.SoftDelete(ctx, "user-1", created.ID); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}
		if _, err := svc.Get(ctx, "user-1", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected deleted task to be gone from active view, got %v", err)
		}

		history, err := svc.ListHistory(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(history) != 1 || history[0].ID != created.ID {
			t.Fatalf("expected deleted task in history, got %d entries", len(history))
		}
		if !history[0].DeletedAt.Valid {
			t.Error("expected history entry to carry a deletion timestamp")
		}
	})

	t.Run("delete twice fails", func(t *testing.T) {
		if err := svc.SoftDelete(ctx, "user-1", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("restore preserves status", func(t *testing.T) {
		restored, err := svc.Restore(ctx, "user-1", created.ID)
		if err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		if restored.Status != domain.StatusInProgress {
			t.Errorf("expected restored status in_progress, got %q", restored.Status)
		}
		if restored.DeletedAt.Valid {
			t.Error("expected restored task to be active")
		}

		history, err := svc.ListHistory(ctx, "user-1")
		if err != nil {
			t.Fatalf("ListHistory() error = %v", err)
		}
		if len(history) != 0 {
			t.Errorf("expected empty history after restore, got %d entries", len(history))
		}
	})

	t.Run("restore of active task fails", func(t *testing.T) {
		if _, err := svc.Restore(ctx, "user-1", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound restoring active task, got %v", err)
		}
	})

	t.Run("purge is permanent", func(t *testing.T) {
		if err := svc.SoftDelete(ctx, "user-1", created.ID); err != nil {
			t.Fatalf("SoftDelete() error = %v", err)
		}
		count, err := svc.PurgeHistory(ctx, "user-1")
		if err != nil {
			t.Fatalf("PurgeHistory() error = %v", err)
		}
		if count != 1 {
			t.Errorf("expected purge count 1, got %d", count)
		}
		if _, err := svc.Restore(ctx, "user-1", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected purged task to be unrestorable, got %v", err)
		}
	})
}

func TestService_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	completed := string(domain.StatusCompleted)
	for i, title := range []string{"one", "two", "three"} {
		task, err := svc.Create(ctx, "user-1", title, "", "", "", nil)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if i < 2 {
			if _, _, err := svc.Update(ctx, "user-1", task.ID, UpdatePatch{Status: &completed}); err != nil {
				t.Fatalf("Update() error = %v", err)
			}
		}
	}

	count, err := svc.ClearCompleted(ctx, "user-1")
	if err != nil {
		t.Fatalf("ClearCompleted() error = %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 cleared tasks, got %d", count)
	}

	active, err := svc.List(ctx, "user-1", "", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(active) != 1 || active[0].Title != "three" {
		t.Fatalf("expected one pending task left, got %d", len(active))
	}

	history, err := svc.ListHistory(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected 2 tasks in history, got %d", len(history))
	}

	t.Run("nothing to clear", func(t *testing.T) {
		count, err := svc.ClearCompleted(ctx, "user-1")
		if err != nil {
			t.Fatalf("ClearCompleted() error = %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 cleared tasks, got %d", count)
		}
	})
}
