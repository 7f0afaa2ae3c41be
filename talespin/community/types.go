package community

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPostNotFound = errors.New("post not found")

// handles community feed database operations
type Repository struct {
	db *pgxpool.Pool
}

type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	ContentType   string    `json:"content_type"`
	ContentID     string    `json:"content_id"`
	Caption       *string   `json:"caption"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	Liked         bool      `json:"liked"`
	CreatedAt     time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// outcome of a like toggle, as seen by the toggling user
type LikeResult struct {
	PostID     string `json:"post_id"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

type CreatePostRequest struct {
	ContentType string  `json:"content_type" binding:"required,oneof=character story"`
	ContentID   string  `json:"content_id" binding:"required,uuid"`
	Caption     *string `json:"caption" binding:"omitempty,max=2000"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000"`
}
