package quota

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultDailyLimit = 5
	DefaultWindow     = 24 * time.Hour

	// CAS attempts before CheckAndConsume gives up
	DefaultMaxRetries = 8
)

var (
	ErrContention = errors.New("quota: too many concurrent updates")
	ErrNoUserID   = errors.New("quota: user id is required")
)

// per-user AI usage counters
type UsageRecord struct {
	UserID                   string    `json:"user_id"`
	IsPremium                bool      `json:"is_premium"`
	DailyAIConversationsUsed int       `json:"daily_ai_conversations_used"`
	LastConversationReset    time.Time `json:"last_conversation_reset"`
}

// ExceededError is returned as the Reason of a denied Decision.
type ExceededError struct {
	Limit    int
	ResetsAt time.Time
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("Daily limit of %d chats exceeded", e.Limit)
}

// outcome of evaluating one AI request against a usage record
type Decision struct {
	Allowed bool
	Reason  error

	// record as read, and the record to store when Persist is set
	Previous UsageRecord
	Record   UsageRecord

	Persist bool
	Reset   bool
}

// read-only view of a user's allowance
type Snapshot struct {
	IsPremium bool       `json:"is_premium"`
	Used      int        `json:"used"`
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"` // -1 when unlimited
	ResetsAt  *time.Time `json:"resets_at,omitempty"`
}

// Store persists usage records. CompareAndSwapUsage writes next only when the
// stored counters still equal prev and reports whether the write happened.
type Store interface {
	GetOrCreateUsage(ctx context.Context, userID string, now time.Time) (UsageRecord, error)
	CompareAndSwapUsage(ctx context.Context, prev, next UsageRecord) (bool, error)
}

type Config struct {
	DailyLimit int
	Window     time.Duration
	MaxRetries int
	Now        func() time.Time
}

// gates AI requests for non-premium users
type Tracker struct {
	store      Store
	limit      int
	window     time.Duration
	maxRetries int
	now        func() time.Time
}
