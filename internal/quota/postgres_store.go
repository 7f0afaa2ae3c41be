package quota

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store backed by the app_users table
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetOrCreateUsage(ctx context.Context, userID string, now time.Time) (UsageRecord, error) {
	var rec UsageRecord

	err := s.db.QueryRow(ctx, queryGetOrCreateUsage, userID, now).Scan(
		&rec.UserID,
		&rec.IsPremium,
		&rec.DailyAIConversationsUsed,
		&rec.LastConversationReset,
	)
	if err != nil {
		return UsageRecord{}, err
	}

	rec.LastConversationReset = rec.LastConversationReset.UTC()

	return rec, nil
}

func (s *PostgresStore) CompareAndSwapUsage(ctx context.Context, prev, next UsageRecord) (bool, error) {
	tag, err := s.db.Exec(
		ctx,
		queryCompareAndSwapUsage,
		prev.UserID,
		prev.DailyAIConversationsUsed,
		prev.LastConversationReset,
		next.DailyAIConversationsUsed,
		next.LastConversationReset,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
