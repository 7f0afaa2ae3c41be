package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// creates a new conversation repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	var messages []byte

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.CharacterID,
		&c.StoryID,
		&c.Title,
		&messages,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}

	if err != nil {
		return nil, err
	}

	c.Messages = []Message{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &c.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode messages: %w", err)
		}
	}

	return &c, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Conversation, error) {
	rows, err := r.db.Query(ctx, queryListByUser, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	list := []Conversation{}

	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}

		list = append(list, *c)
	}

	return list, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Conversation, error) {
	return scanConversation(r.db.QueryRow(ctx, queryGet, id))
}

func (r *Repository) Create(ctx context.Context, userID string, req CreateConversationRequest) (*Conversation, error) {
	return scanConversation(r.db.QueryRow(ctx, queryCreate, userID, req.CharacterID, req.StoryID, req.Title))
}

// appends messages to the stored history
func (r *Repository) AppendMessages(ctx context.Context, id string, messages ...Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}

	tag, err := r.db.Exec(ctx, queryAppendMessages, id, string(payload))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, queryDelete, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}

	return nil
}
