package characters

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCharacterNotFound = errors.New("character not found")

// handles character database operations
type Repository struct {
	db *pgxpool.Pool
}

type Character struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Personality string    `json:"personality"`
	Backstory   string    `json:"backstory"`
	AvatarURL   *string   `json:"avatar_url"`
	Style       string    `json:"style"`
	IsPublic    bool      `json:"is_public"`
	LikesCount  int       `json:"likes_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// a character with its distance to the one searched from
type SimilarCharacter struct {
	Character
	Similarity float64 `json:"similarity"`
}

type ListFilter struct {
	Public *bool
	Style  string
	UserID string
	Limit  int
	Offset int
}

type CreateCharacterRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=100"`
	Description string  `json:"description" binding:"required,min=1"`
	Personality string  `json:"personality" binding:"required,min=1"`
	Backstory   string  `json:"backstory" binding:"required,min=1"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=2048"`
	Style       string  `json:"style" binding:"required,min=1"`
	IsPublic    bool    `json:"is_public"`
}

// partial update; nil fields are left unchanged
type UpdateCharacterRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,min=1"`
	Personality *string `json:"personality" binding:"omitempty,min=1"`
	Backstory   *string `json:"backstory" binding:"omitempty,min=1"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=2048"`
	Style       *string `json:"style" binding:"omitempty,min=1"`
	IsPublic    *bool   `json:"is_public"`
}

// text used to embed a character for similarity search
func (c *Character) EmbeddingText() string {
	return c.Name + "\n" + c.Description + "\nPersonality: " + c.Personality + "\nStyle: " + c.Style
}
