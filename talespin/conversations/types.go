package conversations

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrConversationNotFound = errors.New("conversation not found")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// handles conversation database operations
type Repository struct {
	db *pgxpool.Pool
}

type Message struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

type Conversation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CharacterID string    `json:"character_id"`
	StoryID     *string   `json:"story_id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateConversationRequest struct {
	CharacterID string  `json:"character_id" binding:"required,uuid"`
	StoryID     *string `json:"story_id" binding:"omitempty,uuid"`
	Title       string  `json:"title" binding:"required,min=1,max=200"`
}
