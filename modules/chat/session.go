package chat

import (
	"sync"
	"time"

	domain "github.com/example/task-assistant/domain/conversation"
	"github.com/google/uuid"
)

// SessionManager resolves and extends multi-turn chat context. Appends to
// the same conversation are serialized through a per-conversation lock so
// turn order always reflects submission order.
type SessionManager struct {
	repo *ConversationRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(repo *ConversationRepository) *SessionManager {
	return &SessionManager{
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

// Resolve returns the conversation for the given id, or creates a new empty
// one when no id is supplied. A supplied id that does not resolve to a
// conversation owned by userID fails with ErrConversationNotFound.
func (s *SessionManager) Resolve(userID, conversationID string) (*domain.Conversation, error) {
	if conversationID != "" {
		return s.repo.FindByID(userID, conversationID)
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Messages:  []byte("[]"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// AppendTurns appends turns to the conversation's log and persists it.
// Prior turns are never mutated.
func (s *SessionManager) AppendTurns(conv *domain.Conversation, turns ...domain.Turn) error {
	if err := conv.AppendTurns(turns...); err != nil {
		return err
	}
	conv.UpdatedAt = time.Now()
	return s.repo.Save(conv)
}

// Acquire resolves the conversation and returns it with its append lock
// held. Existing conversations are re-read after the lock is taken so the
// snapshot includes every append a concurrent writer committed while we
// waited. The caller must invoke the returned unlock function.
func (s *SessionManager) Acquire(userID, conversationID string) (*domain.Conversation, func(), error) {
	conv, err := s.Resolve(userID, conversationID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.Lock(conv.ID)
	if conversationID == "" {
		// Freshly created, nobody else knows the id yet.
		return conv, unlock, nil
	}

	conv, err = s.repo.FindByID(userID, conv.ID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return conv, unlock, nil
}

// Lock acquires the append lock for a conversation id and returns the
// unlock function.
func (s *SessionManager) Lock(conversationID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
