package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort defines the interface for the conversational router. Driving
// adapters (the HTTP API) use it instead of calling the bus directly.
type ChatPort interface {
	SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error)
	ListConversations(ctx context.Context, userID string) (*ListConversationsResponse, error)
	GetConversation(ctx context.Context, userID, conversationID string) (*GetConversationResponse, error)
	DeleteConversation(ctx context.Context, userID, conversationID string) error
}

// chatAdapter wraps a ServiceContainer for type-safe cross-module access to
// the chat services.
type chatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new adapter for the chat services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat adapter requires non-nil ServiceContainer")
	}
	return &chatAdapter{container: container}
}

// SendMessage routes one utterance via the send-message service.
func (a *chatAdapter) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	var resp SendMessageResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceSendMessage, json.Marshal, json.Unmarshal, req, &resp,
	); err != nil {
		return nil, fmt.Errorf("send-message service call failed: %w", err)
	}
	return &resp, nil
}

// ListConversations lists a user's conversations via the list-conversations service.
func (a *chatAdapter) ListConversations(ctx context.Context, userID string) (*ListConversationsResponse, error) {
	req := ListConversationsRequest{UserID: userID}
	var resp ListConversationsResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceListConversations, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("list-conversations service call failed: %w", err)
	}
	return &resp, nil
}

// GetConversation fetches a transcript via the get-conversation service.
func (a *chatAdapter) GetConversation(ctx context.Context, userID, conversationID string) (*GetConversationResponse, error) {
	req := GetConversationRequest{UserID: userID, ConversationID: conversationID}
	var resp GetConversationResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceGetConversation, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return nil, fmt.Errorf("get-conversation service call failed: %w", err)
	}
	return &resp, nil
}

// DeleteConversation removes a conversation via the delete-conversation service.
func (a *chatAdapter) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	req := DeleteConversationRequest{UserID: userID, ConversationID: conversationID}
	var resp DeleteConversationResponse
	if err := helper.CallRequestReplyService(
		ctx, a.container, ServiceDeleteConversation, json.Marshal, json.Unmarshal, &req, &resp,
	); err != nil {
		return fmt.Errorf("delete-conversation service call failed: %w", err)
	}
	if !resp.Deleted {
		return fmt.Errorf("conversation not deleted: %s", conversationID)
	}
	return nil
}
