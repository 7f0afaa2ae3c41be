package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new community repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanPost(row pgx.Row) (*Post, error) {
	var p Post

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.ContentType,
		&p.ContentID,
		&p.Caption,
		&p.LikesCount,
		&p.CommentsCount,
		&p.Liked,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// returns the newest posts, each flagged with whether viewerID liked it
func (r *Repository) Feed(ctx context.Context, viewerID string, limit, offset int) ([]Post, error) {
	rows, err := r.db.Query(ctx, queryFeed, viewerID, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	posts := []Post{}

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		posts = append(posts, *p)
	}

	return posts, rows.Err()
}

func (r *Repository) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*Post, error) {
	return scanPost(r.db.QueryRow(ctx, queryCreatePost, userID, req.ContentType, req.ContentID, req.Caption))
}

// ToggleLike flips userID's like on a post. The post row is locked for the
// duration so the like row and likes_count always move together.
func (r *Repository) ToggleLike(ctx context.Context, postID, userID string) (*LikeResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var current int
	if err := tx.QueryRow(ctx, queryLockPost, postID).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}

		return nil, err
	}

	tag, err := tx.Exec(ctx, queryDeleteLike, postID, userID)
	if err != nil {
		return nil, err
	}

	result := &LikeResult{PostID: postID}
	delta := -1

	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, queryInsertLike, postID, userID); err != nil {
			return nil, err
		}

		result.Liked = true
		delta = 1
	}

	if err := tx.QueryRow(ctx, queryAdjustLikes, postID, delta).Scan(&result.LikesCount); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit like toggle: %w", err)
	}

	return result, nil
}

func (r *Repository) postExists(ctx context.Context, postID string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, queryPostExists, postID).Scan(&exists); err != nil {
		return err
	}

	if !exists {
		return ErrPostNotFound
	}

	return nil
}

func (r *Repository) ListComments(ctx context.Context, postID string, limit, offset int) ([]Comment, error) {
	if err := r.postExists(ctx, postID); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, queryListComments, postID, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	comments := []Comment{}

	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}

		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// inserts the comment and bumps comments_count in one transaction
func (r *Repository) CreateComment(ctx context.Context, postID, userID string, req CreateCommentRequest) (*Comment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, queryIncrementComments, postID)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		return nil, ErrPostNotFound
	}

	var c Comment

	err = tx.QueryRow(ctx, queryInsertComment, postID, userID, req.Content).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit comment: %w", err)
	}

	return &c, nil
}
