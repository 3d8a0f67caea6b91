package chat

import "time"

// Service names exposed on the bus.
const (
	ServiceSendMessage        = "send-message"
	ServiceListConversations  = "list-conversations"
	ServiceGetConversation    = "get-conversation"
	ServiceDeleteConversation = "delete-conversation"
)

// SendMessageRequest carries one user utterance into the router.
// ConversationID is optional; when empty a new conversation is started.
type SendMessageRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// SendMessageResponse is the assistant reply plus the conversation it
// belongs to, so callers can continue the thread.
type SendMessageResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Intent         string `json:"intent"`
}

// ListConversationsRequest asks for a user's conversations, newest first.
type ListConversationsRequest struct {
	UserID string `json:"user_id"`
}

// ConversationSummary is one row in a conversation listing.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListConversationsResponse holds the summaries.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Total         int                   `json:"total"`
}

// GetConversationRequest fetches a full conversation transcript.
type GetConversationRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

// TurnResponse is one message in a transcript.
type TurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// GetConversationResponse is the full transcript.
type GetConversationResponse struct {
	ID        string         `json:"id"`
	Messages  []TurnResponse `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DeleteConversationRequest removes a conversation and its transcript.
type DeleteConversationRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

// DeleteConversationResponse confirms the removal.
type DeleteConversationResponse struct {
	Deleted bool `json:"deleted"`
}
