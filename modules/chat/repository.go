package chat

import (
	"errors"
	"fmt"

	domain "github.com/example/task-assistant/domain/conversation"
	"gorm.io/gorm"
)

// ConversationRepository handles conversation persistence using GORM.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create saves a new conversation.
func (r *ConversationRepository) Create(conv *domain.Conversation) error {
	if err := r.db.Create(conv).Error; err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

// FindByID retrieves a conversation owned by the given user.
func (r *ConversationRepository) FindByID(userID, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.First(&conv, "id = ? AND user_id = ?", conversationID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return &conv, nil
}

// Save persists changes to an existing conversation.
func (r *ConversationRepository) Save(conv *domain.Conversation) error {
	if err := r.db.Save(conv).Error; err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// ListByUser retrieves all conversations for a user, most recently updated
// first.
func (r *ConversationRepository) ListByUser(userID string) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// Delete removes a conversation owned by the given user.
func (r *ConversationRepository) Delete(userID, conversationID string) error {
	result := r.db.Where("id = ? AND user_id = ?", conversationID, userID).
		Delete(&domain.Conversation{})
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}
