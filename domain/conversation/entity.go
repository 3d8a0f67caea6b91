package conversation

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single entry in a conversation's append-only message log.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation holds the multi-turn chat context for one user.
// Turns are stored as a JSON array ordered by occurrence; they are never
// reordered or edited after being appended.
type Conversation struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"index;not null;size:36" json:"user_id"`
	Messages  datatypes.JSON `gorm:"not null" json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the table name for the Conversation entity.
func (Conversation) TableName() string {
	return "conversations"
}

// Turns decodes the stored message log.
func (c *Conversation) Turns() ([]Turn, error) {
	if len(c.Messages) == 0 {
		return nil, nil
	}
	var turns []Turn
	if err := json.Unmarshal(c.Messages, &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// AppendTurns appends turns to the message log. Existing turns are preserved
// untouched; this is the only supported mutation of the log.
func (c *Conversation) AppendTurns(turns ...Turn) error {
	existing, err := c.Turns()
	if err != nil {
		return err
	}
	existing = append(existing, turns...)
	raw, err := json.Marshal(existing)
	if err != nil {
		return err
	}
	c.Messages = raw
	return nil
}
