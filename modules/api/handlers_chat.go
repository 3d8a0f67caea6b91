package api

import (
	"log"
	"strings"

	"github.com/example/task-assistant/modules/chat"
	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /chat. The rate limiter runs before this
// handler.
func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	resp, err := h.chat.SendMessage(c.UserContext(), &chat.SendMessageRequest{
		UserID:         currentUserID(c),
		ConversationID: req.ConversationID,
		Message:        req.Message,
	})
	if err != nil {
		return h.handleChatError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ListConversations handles GET /chat/conversations.
func (h *Handlers) ListConversations(c *fiber.Ctx) error {
	resp, err := h.chat.ListConversations(c.UserContext(), currentUserID(c))
	if err != nil {
		return h.handleChatError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// GetConversation handles GET /chat/conversations/:id.
func (h *Handlers) GetConversation(c *fiber.Ctx) error {
	resp, err := h.chat.GetConversation(c.UserContext(), currentUserID(c), c.Params("id"))
	if err != nil {
		return h.handleChatError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// DeleteConversation handles DELETE /chat/conversations/:id.
func (h *Handlers) DeleteConversation(c *fiber.Ctx) error {
	if err := h.chat.DeleteConversation(c.UserContext(), currentUserID(c), c.Params("id")); err != nil {
		return h.handleChatError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"deleted": true})
}

// handleChatError maps chat service errors to HTTP responses. Errors cross
// the service boundary as strings, so matching is by message.
func (h *Handlers) handleChatError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "conversation not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Conversation not found",
		})
	case strings.Contains(errStr, "message must not be empty"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Message must not be empty",
		})
	case strings.Contains(errStr, "message exceeds"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Message is too long",
		})
	default:
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
