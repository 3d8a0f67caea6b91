package api

import (
	"log"
	"strings"

	"github.com/example/task-assistant/modules/task"
	"github.com/gofiber/fiber/v2"
)

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	resp, err := h.tasks.CreateTask(c.UserContext(), &task.CreateTaskRequest{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListTasks handles GET /tasks. Supports ?status= and ?sort= query params.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	resp, err := h.tasks.ListTasks(c.UserContext(), &task.ListTasksRequest{
		UserID:       currentUserID(c),
		StatusFilter: c.Query("status"),
		SortOrder:    c.Query("sort"),
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	resp, err := h.tasks.GetTask(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// UpdateTask handles PUT /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	resp, err := h.tasks.UpdateTask(c.UserContext(), &task.UpdateTaskRequest{
		UserID:      currentUserID(c),
		TaskID:      c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// DeleteTask handles DELETE /tasks/:id. The task moves to history and can
// be restored.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	if err := h.tasks.DeleteTask(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": true})
}

// RestoreTask handles POST /tasks/:id/restore.
func (h *Handlers) RestoreTask(c *fiber.Ctx) error {
	resp, err := h.tasks.RestoreTask(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ListHistory handles GET /tasks/history.
func (h *Handlers) ListHistory(c *fiber.Ctx) error {
	resp, err := h.tasks.ListHistory(c.UserContext(), currentUserID(c))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ClearCompleted handles POST /tasks/clear-completed.
func (h *Handlers) ClearCompleted(c *fiber.Ctx) error {
	count, err := h.tasks.ClearCompleted(c.UserContext(), currentUserID(c))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(CountResponse{Count: count})
}

// PurgeHistory handles DELETE /tasks/history. Purged tasks cannot be
// restored.
func (h *Handlers) PurgeHistory(c *fiber.Ctx) error {
	count, err := h.tasks.PurgeHistory(c.UserContext(), currentUserID(c))
	if err != nil {
		return h.handleTaskError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(CountResponse{Count: count})
}

// ListActivity handles GET /activity.
func (h *Handlers) ListActivity(c *fiber.Ctx) error {
	resp, err := h.activity.ListActivity(c.UserContext(), currentUserID(c))
	if err != nil {
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// handleTaskError maps task service errors to HTTP responses. Errors cross
// the service boundary as strings, so matching is by message.
func (h *Handlers) handleTaskError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(errStr, "title must not be empty"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Task title must not be empty",
		})
	case strings.Contains(errStr, "invalid status"),
		strings.Contains(errStr, "invalid priority"),
		strings.Contains(errStr, "status_filter must be"),
		strings.Contains(errStr, "sort_order must be"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: errMessage(errStr),
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// errMessage strips wrapped service-call prefixes from an error string so
// the client sees only the final cause.
func errMessage(errStr string) string {
	if i := strings.LastIndex(errStr, ": "); i >= 0 {
		return errStr[i+2:]
	}
	return errStr
}
