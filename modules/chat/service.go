package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	domain "github.com/example/task-assistant/domain/conversation"
	taskdomain "github.com/example/task-assistant/domain/task"
	"github.com/example/task-assistant/modules/task"
)

const (
	// MaxMessageLength bounds a single utterance.
	MaxMessageLength = 2000
	// DefaultContextTurns is how many prior turns the responder sees.
	DefaultContextTurns = 20
	// DefaultResponderTimeout bounds conversational replies.
	DefaultResponderTimeout = 30 * time.Second

	previewLength = 50

	fallbackReply = "I'm here to help you manage your tasks. " +
		"Try 'add a task: buy milk', 'list my tasks', or 'complete buy milk'."
)

// ChatService routes utterances: task intents are executed against the task
// engine, everything else goes to the conversational responder. Every
// exchange is appended to the conversation before the reply is returned.
type ChatService struct {
	sessions  *SessionManager
	tasks     task.TaskPort
	extractor Extractor
	responder Responder

	maxMessageLength int
	contextTurns     int
	responderTimeout time.Duration
}

// ChatOption customizes a ChatService.
type ChatOption func(*ChatService)

// WithMaxMessageLength overrides the utterance length bound.
func WithMaxMessageLength(n int) ChatOption {
	return func(s *ChatService) {
		if n > 0 {
			s.maxMessageLength = n
		}
	}
}

// WithContextTurns overrides how many prior turns the responder sees.
func WithContextTurns(n int) ChatOption {
	return func(s *ChatService) {
		if n > 0 {
			s.contextTurns = n
		}
	}
}

// WithResponderTimeout overrides the bound on conversational replies.
func WithResponderTimeout(d time.Duration) ChatOption {
	return func(s *ChatService) {
		if d > 0 {
			s.responderTimeout = d
		}
	}
}

// NewChatService creates a new ChatService. responder may be nil, in which
// case non-task utterances get a canned reply.
func NewChatService(sessions *SessionManager, tasks task.TaskPort, extractor Extractor, responder Responder, opts ...ChatOption) *ChatService {
	s := &ChatService{
		sessions:         sessions,
		tasks:            tasks,
		extractor:        extractor,
		responder:        responder,
		maxMessageLength: MaxMessageLength,
		contextTurns:     DefaultContextTurns,
		responderTimeout: DefaultResponderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendMessage handles one utterance end to end and returns the reply.
func (s *ChatService) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > s.maxMessageLength {
		return nil, ErrMessageTooLong
	}

	conv, unlock, err := s.sessions.Acquire(req.UserID, req.ConversationID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	history, err := conv.Turns()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	result, err := s.extractor.Extract(ctx, message, history)
	if err != nil {
		return nil, fmt.Errorf("intent extraction failed: %w", err)
	}

	reply := s.route(ctx, req.UserID, message, history, result)

	now := time.Now()
	err = s.sessions.AppendTurns(conv,
		domain.Turn{Role: domain.RoleUser, Content: message, Timestamp: now},
		domain.Turn{Role: domain.RoleAssistant, Content: reply, Timestamp: now},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record exchange: %w", err)
	}

	return &SendMessageResponse{
		ConversationID: conv.ID,
		Reply:          reply,
		Intent:         string(result.Intent),
	}, nil
}

// route dispatches a classified intent. It always produces a reply; task
// engine failures surface as apologetic messages rather than errors so the
// exchange is still recorded.
func (s *ChatService) route(ctx context.Context, userID, message string, history []domain.Turn, result *IntentResult) string {
	switch result.Intent {
	case IntentCreateTask:
		return s.handleCreate(ctx, userID, result.Slots)
	case IntentListTasks:
		return s.handleList(ctx, userID, result.Slots.StatusFilter)
	case IntentCompleteTask:
		return s.handleComplete(ctx, userID, result.Slots.TargetTitle)
	case IntentDeleteTask:
		return s.handleDelete(ctx, userID, result.Slots.TargetTitle)
	case IntentUpdateTask:
		return s.handleUpdate(ctx, userID, result.Slots)
	default:
		return s.handleChat(ctx, message, history)
	}
}

func (s *ChatService) handleCreate(ctx context.Context, userID string, slots Slots) string {
	if slots.Title == "" {
		return "What should the task be called? For example: 'add a task: buy milk'."
	}

	req := &task.CreateTaskRequest{
		UserID:   userID,
		Title:    slots.Title,
		Status:   string(slots.Status),
		Priority: string(slots.Priority),
	}
	created, err := s.tasks.CreateTask(ctx, req)
	if err != nil {
		return "Sorry, I couldn't create that task. Please try again."
	}
	return fmt.Sprintf("Added task: %q.", created.Title)
}

func (s *ChatService) handleList(ctx context.Context, userID, filter string) string {
	resp, err := s.tasks.ListTasks(ctx, &task.ListTasksRequest{
		UserID:       userID,
		StatusFilter: filter,
	})
	if err != nil {
		return "Sorry, I couldn't fetch your tasks. Please try again."
	}
	if resp.Total == 0 {
		if filter != "" {
			return fmt.Sprintf("You have no %s tasks.", strings.ReplaceAll(filter, "_", " "))
		}
		return "You have no tasks yet. Try 'add a task: buy milk'."
	}

	var b strings.Builder
	if filter != "" {
		fmt.Fprintf(&b, "Your %s tasks:\n", strings.ReplaceAll(filter, "_", " "))
	} else {
		b.WriteString("Your tasks:\n")
	}
	for i, t := range resp.Tasks {
		fmt.Fprintf(&b, "%d. %s [%s]", i+1, t.Title, strings.ReplaceAll(t.Status, "_", " "))
		if t.Priority == string(taskdomain.PriorityHigh) {
			b.WriteString(" (high priority)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *ChatService) handleComplete(ctx context.Context, userID, target string) string {
	if target == "" {
		return "Which task should I mark as completed? For example: 'complete buy milk'."
	}

	matches, err := s.matchTasks(ctx, userID, target)
	if err != nil {
		return "Sorry, I couldn't look up your tasks. Please try again."
	}
	switch len(matches) {
	case 0:
		return fmt.Sprintf("I couldn't find a task matching %q. Try 'list my tasks' to see what you have.", target)
	case 1:
		status := string(taskdomain.StatusCompleted)
		updated, err := s.tasks.UpdateTask(ctx, &task.UpdateTaskRequest{
			UserID: userID,
			TaskID: matches[0].ID,
			Status: &status,
		})
		if err != nil {
			return "Sorry, I couldn't update that task. Please try again."
		}
		return fmt.Sprintf("Marked %q as completed.", updated.Title)
	default:
		return ambiguousReply("complete", target, matches)
	}
}

func (s *ChatService) handleDelete(ctx context.Context, userID, target string) string {
	if target == "" {
		return "Which task should I delete? For example: 'delete buy milk'."
	}

	matches, err := s.matchTasks(ctx, userID, target)
	if err != nil {
		return "Sorry, I couldn't look up your tasks. Please try again."
	}
	switch len(matches) {
	case 0:
		return fmt.Sprintf("I couldn't find a task matching %q. Try 'list my tasks' to see what you have.", target)
	case 1:
		if err := s.tasks.DeleteTask(ctx, userID, matches[0].ID); err != nil {
			return "Sorry, I couldn't delete that task. Please try again."
		}
		return fmt.Sprintf("Deleted %q. You can restore it from history.", matches[0].Title)
	default:
		return ambiguousReply("delete", target, matches)
	}
}

func (s *ChatService) handleUpdate(ctx context.Context, userID string, slots Slots) string {
	if slots.TargetTitle == "" || slots.NewTitle == "" {
		return "To rename a task, say something like: 'edit buy milk to buy oat milk'."
	}

	matches, err := s.matchTasks(ctx, userID, slots.TargetTitle)
	if err != nil {
		return "Sorry, I couldn't look up your tasks. Please try again."
	}
	switch len(matches) {
	case 0:
		return fmt.Sprintf("I couldn't find a task matching %q. Try 'list my tasks' to see what you have.", slots.TargetTitle)
	case 1:
		old := matches[0].Title
		updated, err := s.tasks.UpdateTask(ctx, &task.UpdateTaskRequest{
			UserID: userID,
			TaskID: matches[0].ID,
			Title:  &slots.NewTitle,
		})
		if err != nil {
			return "Sorry, I couldn't update that task. Please try again."
		}
		return fmt.Sprintf("Renamed %q to %q.", old, updated.Title)
	default:
		return ambiguousReply("update", slots.TargetTitle, matches)
	}
}

// handleChat answers a non-task utterance through the responder, bounded by
// the responder timeout. Failures fall back to a canned reply.
func (s *ChatService) handleChat(ctx context.Context, message string, history []domain.Turn) string {
	if s.responder == nil {
		return fallbackReply
	}

	if len(history) > s.contextTurns {
		history = history[len(history)-s.contextTurns:]
	}

	ctx, cancel := context.WithTimeout(ctx, s.responderTimeout)
	defer cancel()

	reply, err := s.responder.Respond(ctx, message, history)
	if err != nil || strings.TrimSpace(reply) == "" {
		return fallbackReply
	}
	return reply
}

// matchTasks finds active tasks whose title matches the reference. Exact
// case-insensitive matches win; otherwise substring matches count. The
// caller decides what to do when more than one task matches.
func (s *ChatService) matchTasks(ctx context.Context, userID, target string) ([]task.TaskResponse, error) {
	resp, err := s.tasks.ListTasks(ctx, &task.ListTasksRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(target))
	var exact, partial []task.TaskResponse
	for _, t := range resp.Tasks {
		title := strings.ToLower(t.Title)
		switch {
		case title == needle:
			exact = append(exact, t)
		case strings.Contains(title, needle):
			partial = append(partial, t)
		}
	}
	if len(exact) > 0 {
		return exact, nil
	}
	return partial, nil
}

// ambiguousReply lists the candidates instead of picking one.
func ambiguousReply(action, target string, matches []task.TaskResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d tasks matching %q:\n", len(matches), target)
	for i, t := range matches {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Title)
	}
	fmt.Fprintf(&b, "Which one should I %s? Please use its full title.", action)
	return b.String()
}

// ListConversations returns the user's conversations, most recent first.
// The preview is the first user message, truncated.
func (s *ChatService) ListConversations(userID string) (*ListConversationsResponse, error) {
	convs, err := s.sessions.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		preview := ""
		if turns, err := conv.Turns(); err == nil {
			for _, turn := range turns {
				if turn.Role == domain.RoleUser {
					preview = truncate(turn.Content, previewLength)
					break
				}
			}
		}
		summaries = append(summaries, ConversationSummary{
			ID:        conv.ID,
			Preview:   preview,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	return &ListConversationsResponse{Conversations: summaries, Total: len(summaries)}, nil
}

// GetConversation returns the full transcript of one conversation.
func (s *ChatService) GetConversation(userID, conversationID string) (*GetConversationResponse, error) {
	conv, err := s.sessions.repo.FindByID(userID, conversationID)
	if err != nil {
		return nil, err
	}
	turns, err := conv.Turns()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	messages := make([]TurnResponse, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, TurnResponse{
			Role:      turn.Role,
			Content:   turn.Content,
			Timestamp: turn.Timestamp,
		})
	}
	return &GetConversationResponse{
		ID:        conv.ID,
		Messages:  messages,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}, nil
}

// DeleteConversation removes a conversation and its transcript.
func (s *ChatService) DeleteConversation(userID, conversationID string) error {
	return s.sessions.repo.Delete(userID, conversationID)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
