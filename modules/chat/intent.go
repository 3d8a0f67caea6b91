package chat

import (
	"context"
	"regexp"
	"strings"

	domain "github.com/example/task-assistant/domain/conversation"
	taskdomain "github.com/example/task-assistant/domain/task"
)

// Intent is the classified action a chat utterance maps to.
type Intent string

const (
	IntentCreateTask   Intent = "create_task"
	IntentListTasks    Intent = "list_tasks"
	IntentCompleteTask Intent = "complete_task"
	IntentDeleteTask   Intent = "delete_task"
	IntentUpdateTask   Intent = "update_task"
	IntentUnknown      Intent = "unknown"
)

// Slots holds the values extracted from an utterance.
type Slots struct {
	// Title is the new task title for create_task.
	Title string
	// TargetTitle references an existing task for complete/delete/update.
	TargetTitle string
	// NewTitle is the replacement title for update_task.
	NewTitle string
	// StatusFilter restricts list_tasks; empty means all statuses.
	StatusFilter string
	// Status and Priority are optional attributes for create_task.
	Status   taskdomain.Status
	Priority taskdomain.Priority
}

// IntentResult is the extractor's output contract: a classified intent plus
// any slots, with IntentUnknown standing in for "no confident intent".
type IntentResult struct {
	Intent Intent
	Slots  Slots
}

// Extractor turns an utterance plus prior turns into a structured intent.
// It is a capability boundary: the router treats it as a black box and
// implementations are swappable for tests.
type Extractor interface {
	Extract(ctx context.Context, utterance string, history []domain.Turn) (*IntentResult, error)
}

// RuleExtractor classifies intents with keyword and pattern matching.
// It never consults the prior turns and never fails.
type RuleExtractor struct{}

// NewRuleExtractor creates a new RuleExtractor.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

var _ Extractor = (*RuleExtractor)(nil)

var (
	editPattern = regexp.MustCompile(`(?i)(?:edit|update|change|modify|rename)\s+(?:the\s+)?(?:task\s+)?(.+?)\s+to\s+(.+)`)

	editWords     = []string{"edit", "update", "change", "modify", "rename"}
	deleteWords   = []string{"delete", "remove", "cancel"}
	completeWords = []string{"complete", "done", "finish", "finished", "mark done"}
	listWords     = []string{"list", "show", "my tasks", "all tasks", "what tasks"}
	addWords      = []string{"add", "create", "new", "remind"}
	fillerWords   = []string{"mark", "as", "task", "the", "my", "please"}

	// wordPatterns holds one boundary-anchored pattern per known word so
	// Extract never compiles regexps per utterance.
	wordPatterns = compileWordPatterns(
		editWords, deleteWords, completeWords, listWords, addWords, fillerWords,
	)
)

func compileWordPatterns(lists ...[]string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, list := range lists {
		for _, w := range list {
			patterns[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
		}
	}
	return patterns
}

// wordPattern returns the precompiled boundary pattern for w, compiling on
// the spot only for words outside the known lists.
func wordPattern(w string) *regexp.Regexp {
	if p, ok := wordPatterns[w]; ok {
		return p
	}
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
}

// Extract classifies the utterance and fills slots. Classification order
// matters: edit phrasing often contains "to" plus a new name, so it is
// checked before delete/complete, and add keywords are checked last.
func (e *RuleExtractor) Extract(_ context.Context, utterance string, _ []domain.Turn) (*IntentResult, error) {
	msg := strings.ToLower(strings.TrimSpace(utterance))

	switch {
	case containsAnyWord(msg, editWords):
		return e.extractUpdate(msg), nil
	case containsAnyWord(msg, deleteWords):
		return &IntentResult{
			Intent: IntentDeleteTask,
			Slots:  Slots{TargetTitle: extractTarget(msg, deleteWords)},
		}, nil
	case containsAnyWord(msg, completeWords):
		return &IntentResult{
			Intent: IntentCompleteTask,
			Slots:  Slots{TargetTitle: extractTarget(msg, completeWords)},
		}, nil
	case containsAnyWord(msg, listWords):
		return &IntentResult{
			Intent: IntentListTasks,
			Slots:  Slots{StatusFilter: extractStatusFilter(msg)},
		}, nil
	case containsAnyWord(msg, addWords):
		return &IntentResult{
			Intent: IntentCreateTask,
			Slots: Slots{
				Title:    extractTitle(msg),
				Status:   extractStatus(msg),
				Priority: extractPriority(msg),
			},
		}, nil
	}

	return &IntentResult{Intent: IntentUnknown}, nil
}

// extractUpdate parses "rename X to Y" style utterances. Without both a
// target and a new name the intent stays update_task with empty slots so
// the router can ask for the expected format.
func (e *RuleExtractor) extractUpdate(msg string) *IntentResult {
	result := &IntentResult{Intent: IntentUpdateTask}
	if m := editPattern.FindStringSubmatch(msg); m != nil {
		result.Slots.TargetTitle = cleanTitle(m[1])
		result.Slots.NewTitle = cleanTitle(m[2])
	}
	return result
}

// containsAnyWord reports whether msg contains any of the words with word
// boundaries, so "finish" does not match inside "refinishing".
func containsAnyWord(msg string, words []string) bool {
	for _, w := range words {
		if wordPattern(w).MatchString(msg) {
			return true
		}
	}
	return false
}

// extractTitle strips creation phrasing and attribute phrases from an add
// utterance, leaving the task title.
func extractTitle(msg string) string {
	title := msg
	for _, phrase := range []string{
		"add a task to", "add a new task", "add a task", "add task to", "add task",
		"create a task to", "create a task", "create task to", "create task",
		"new task", "remind me to", "add", "create",
	} {
		title = strings.ReplaceAll(title, phrase, "")
	}
	for _, phrase := range []string{
		"on progress", "in progress", "high priority", "low priority",
		"urgent", "completed", "pending",
	} {
		title = strings.ReplaceAll(title, phrase, "")
	}
	return cleanTitle(title)
}

// extractTarget strips intent keywords and filler words, leaving the
// reference to an existing task.
func extractTarget(msg string, intentWords []string) string {
	target := msg
	words := append([]string{}, intentWords...)
	words = append(words, fillerWords...)
	for _, w := range words {
		target = wordPattern(w).ReplaceAllString(target, "")
	}
	return cleanTitle(target)
}

// extractStatusFilter maps list phrasing to a status filter.
func extractStatusFilter(msg string) string {
	switch {
	case strings.Contains(msg, "in progress") || strings.Contains(msg, "on progress"):
		return string(taskdomain.StatusInProgress)
	case strings.Contains(msg, "completed") || strings.Contains(msg, "done") || strings.Contains(msg, "finished"):
		return string(taskdomain.StatusCompleted)
	case strings.Contains(msg, "pending"):
		return string(taskdomain.StatusPending)
	}
	return ""
}

// extractStatus maps creation phrasing to an initial status.
func extractStatus(msg string) taskdomain.Status {
	switch {
	case strings.Contains(msg, "in progress") || strings.Contains(msg, "on progress"):
		return taskdomain.StatusInProgress
	case strings.Contains(msg, "completed"):
		return taskdomain.StatusCompleted
	}
	return taskdomain.StatusPending
}

// extractPriority maps creation phrasing to a priority.
func extractPriority(msg string) taskdomain.Priority {
	switch {
	case strings.Contains(msg, "high priority") || strings.Contains(msg, "urgent"):
		return taskdomain.PriorityHigh
	case strings.Contains(msg, "low priority"):
		return taskdomain.PriorityLow
	}
	return taskdomain.PriorityMedium
}

// cleanTitle removes quotes, leading separators and surplus whitespace.
func cleanTitle(s string) string {
	s = strings.NewReplacer(`"`, "", "'", "").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, ":,.- ")
	return strings.TrimSpace(s)
}
