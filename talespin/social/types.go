package social

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSelfFollow = errors.New("cannot follow yourself")

// handles follower graph operations
type Repository struct {
	db *pgxpool.Pool
}

type FollowResult struct {
	Following bool `json:"following"`
}

// a user in a follower or following list
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	Since     time.Time `json:"since"`
}
