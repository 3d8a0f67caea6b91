package chat

import "errors"

var (
	// ErrEmptyMessage is returned when a chat message is empty after trimming.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrMessageTooLong is returned when a chat message exceeds the configured limit.
	ErrMessageTooLong = errors.New("message exceeds maximum length")
	// ErrConversationNotFound is returned when a conversation id does not
	// resolve to a conversation owned by the requesting user.
	ErrConversationNotFound = errors.New("conversation not found")
)
