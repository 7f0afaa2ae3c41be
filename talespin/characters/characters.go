package characters

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// creates a new character repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanCharacter(row pgx.Row, extra ...any) (*Character, error) {
	var c Character

	dest := []any{
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Description,
		&c.Personality,
		&c.Backstory,
		&c.AvatarURL,
		&c.Style,
		&c.IsPublic,
		&c.LikesCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}

		return nil, err
	}

	return &c, nil
}

func (r *Repository) collect(rows pgx.Rows) ([]Character, error) {
	defer rows.Close()

	list := []Character{}

	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}

		list = append(list, *c)
	}

	return list, rows.Err()
}

// lists characters matching the filter, newest first
func (r *Repository) List(ctx context.Context, f ListFilter) ([]Character, error) {
	rows, err := r.db.Query(ctx, queryList, f.Public, f.Style, f.UserID, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}

	return r.collect(rows)
}

func (r *Repository) Get(ctx context.Context, id string) (*Character, error) {
	return scanCharacter(r.db.QueryRow(ctx, queryGet, id))
}

func (r *Repository) Create(ctx context.Context, userID string, req CreateCharacterRequest) (*Character, error) {
	return scanCharacter(r.db.QueryRow(
		ctx,
		queryCreate,
		userID,
		req.Name,
		req.Description,
		req.Personality,
		req.Backstory,
		req.AvatarURL,
		req.Style,
		req.IsPublic,
	))
}

func (r *Repository) Update(ctx context.Context, id string, req UpdateCharacterRequest) (*Character, error) {
	return scanCharacter(r.db.QueryRow(
		ctx,
		queryUpdate,
		id,
		req.Name,
		req.Description,
		req.Personality,
		req.Backstory,
		req.AvatarURL,
		req.Style,
		req.IsPublic,
	))
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, queryDelete, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}

	return nil
}

// stores the embedding used by Similar
func (r *Repository) SetEmbedding(ctx context.Context, id string, embedding []float32) error {
	tag, err := r.db.Exec(ctx, querySetEmbedding, id, pgvector.NewVector(embedding))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}

	return nil
}

// returns public characters closest to id by cosine distance; empty until id has been embedded
func (r *Repository) Similar(ctx context.Context, id string, limit int) ([]SimilarCharacter, error) {
	var embedding pgvector.Vector

	err := r.db.QueryRow(ctx, queryGetEmbedding, id).Scan(&embedding)
	if errors.Is(err, pgx.ErrNoRows) {
		return []SimilarCharacter{}, nil
	}

	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, querySimilar, id, embedding, limit)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	results := []SimilarCharacter{}

	for rows.Next() {
		var similarity float64

		c, err := scanCharacter(rows, &similarity)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}

		results = append(results, SimilarCharacter{Character: *c, Similarity: similarity})
	}

	return results, rows.Err()
}

// returns characters that still need an embedding, oldest first
func (r *Repository) ListMissingEmbeddings(ctx context.Context, limit int) ([]Character, error) {
	rows, err := r.db.Query(ctx, queryMissingEmbeddings, limit)
	if err != nil {
		return nil, err
	}

	return r.collect(rows)
}
