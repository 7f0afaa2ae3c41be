package users

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

// handles user database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents an authenticated user in the system
type User struct {
	ID                       string    `json:"id"`
	Email                    string    `json:"email"`
	Name                     string    `json:"name"`
	AvatarURL                string    `json:"avatar_url"`
	Provider                 string    `json:"provider,omitempty"`
	ProviderID               string    `json:"-"`
	IsPremium                bool      `json:"is_premium"`
	DailyAIConversationsUsed int       `json:"daily_ai_conversations_used"`
	LastConversationReset    time.Time `json:"last_conversation_reset"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// contains data for updating a user's profile; nil fields are left unchanged
type UpdateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=2048"`
}
