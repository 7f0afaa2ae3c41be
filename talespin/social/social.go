package social

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new social repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// follows targetID, or unfollows when already following
func (r *Repository) ToggleFollow(ctx context.Context, userID, targetID string) (*FollowResult, error) {
	if userID == targetID {
		return nil, ErrSelfFollow
	}

	tag, err := r.db.Exec(ctx, queryUnfollow, userID, targetID)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() > 0 {
		return &FollowResult{Following: false}, nil
	}

	if _, err := r.db.Exec(ctx, queryFollow, userID, targetID); err != nil {
		return nil, err
	}

	return &FollowResult{Following: true}, nil
}

func (r *Repository) Followers(ctx context.Context, userID string, limit, offset int) ([]Profile, error) {
	return r.list(ctx, queryFollowers, userID, limit, offset)
}

func (r *Repository) Following(ctx context.Context, userID string, limit, offset int) ([]Profile, error) {
	return r.list(ctx, queryFollowing, userID, limit, offset)
}

func (r *Repository) list(ctx context.Context, query, userID string, limit, offset int) ([]Profile, error) {
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	profiles := []Profile{}

	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.AvatarURL, &p.Since); err != nil {
			return nil, err
		}

		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
