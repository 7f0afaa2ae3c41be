package stories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new story repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanStory(row pgx.Row) (*Story, error) {
	var s Story
	var content []byte

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CharacterID,
		&s.Title,
		&s.Description,
		&s.Genre,
		&content,
		&s.IsPublic,
		&s.IsPrivate,
		&s.LikesCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStoryNotFound
	}

	if err != nil {
		return nil, err
	}

	s.Content = content

	return &s, nil
}

// lists non-private stories, newest first
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Story, error) {
	rows, err := r.db.Query(ctx, queryList, f.Public, f.Genre, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	list := []Story{}

	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}

		list = append(list, *s)
	}

	return list, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Story, error) {
	return scanStory(r.db.QueryRow(ctx, queryGet, id))
}

func (r *Repository) Create(ctx context.Context, userID string, req CreateStoryRequest) (*Story, error) {
	return scanStory(r.db.QueryRow(
		ctx,
		queryCreate,
		userID,
		req.CharacterID,
		req.Title,
		req.Description,
		req.Genre,
		string(req.Content),
		req.IsPublic,
		req.IsPrivate,
	))
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateStoryRequest) (*Story, error) {
	var content *string
	if len(req.Content) > 0 {
		s := string(req.Content)
		content = &s
	}

	return scanStory(r.db.QueryRow(
		ctx,
		queryUpdate,
		id,
		req.Title,
		req.Description,
		req.Genre,
		content,
		req.IsPublic,
		req.IsPrivate,
	))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, queryDelete, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrStoryNotFound
	}

	return nil
}
