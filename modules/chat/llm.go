package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domain "github.com/example/task-assistant/domain/conversation"
)

// Responder produces a conversational reply for utterances that carry no
// task intent. Implementations must honor ctx cancellation.
type Responder interface {
	Respond(ctx context.Context, message string, history []domain.Turn) (string, error)
}

const (
	defaultGroqEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel    = "llama-3.3-70b-versatile"

	systemPrompt = "You are a friendly assistant inside a personal task manager. " +
		"Keep replies short and helpful. If the user seems to want to manage tasks, " +
		"suggest phrasing like 'add a task: buy milk' or 'list my tasks'."
)

// ErrNoResponder is returned when no API key is configured.
var ErrNoResponder = errors.New("no chat responder configured")

// GroqConfig holds the settings for the Groq chat completions API.
type GroqConfig struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// GroqResponder calls the Groq OpenAI-compatible chat completions endpoint.
type GroqResponder struct {
	config GroqConfig
	client *http.Client
}

// NewGroqResponder creates a responder with defaults filled in.
func NewGroqResponder(config GroqConfig) *GroqResponder {
	if config.Model == "" {
		config.Model = defaultGroqModel
	}
	if config.Endpoint == "" {
		config.Endpoint = defaultGroqEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &GroqResponder{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

var _ Responder = (*GroqResponder)(nil)

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Respond sends the message plus recent turns to the completions API and
// returns the assistant reply.
func (r *GroqResponder) Respond(ctx context.Context, message string, history []domain.Turn) (string, error) {
	if r.config.APIKey == "" {
		return "", ErrNoResponder
	}

	messages := make([]groqMessage, 0, len(history)+2)
	messages = append(messages, groqMessage{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, groqMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, groqMessage{Role: domain.RoleUser, Content: message})

	body, err := json.Marshal(groqRequest{
		Model:       r.config.Model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.config.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	var parsed groqResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("completion API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
