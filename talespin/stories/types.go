package stories

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStoryNotFound = errors.New("story not found")

// handles story database operations
type Repository struct {
	db *pgxpool.Pool
}

type Story struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	CharacterID string          `json:"character_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Genre       string          `json:"genre"`
	Content     json.RawMessage `json:"content" swaggertype:"object"`
	IsPublic    bool            `json:"is_public"`
	IsPrivate   bool            `json:"is_private"`
	LikesCount  int             `json:"likes_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// a private story is only visible to its owner
func (s *Story) VisibleTo(userID string) bool {
	return !s.IsPrivate || s.UserID == userID
}

type ListFilter struct {
	Public *bool
	Genre  string
	Limit  int
	Offset int
}

type CreateStoryRequest struct {
	Title       string          `json:"title" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"required,min=1"`
	Genre       string          `json:"genre" binding:"required,min=1"`
	CharacterID string          `json:"character_id" binding:"required,uuid"`
	Content     json.RawMessage `json:"content" binding:"required" swaggertype:"object"`
	IsPublic    bool            `json:"is_public"`
	IsPrivate   bool            `json:"is_private"`
}

type UpdateStoryRequest struct {
	Title       *string         `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string         `json:"description" binding:"omitempty,min=1"`
	Genre       *string         `json:"genre" binding:"omitempty,min=1"`
	Content     json.RawMessage `json:"content" swaggertype:"object"`
	IsPublic    *bool           `json:"is_public"`
	IsPrivate   *bool           `json:"is_private"`
}
