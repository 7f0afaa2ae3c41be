package quota

import (
	"context"
	"fmt"
	"time"
)

// creates a tracker; zero config values fall back to the defaults
func NewTracker(store Store, cfg Config) *Tracker {
	t := &Tracker{
		store:      store,
		limit:      cfg.DailyLimit,
		window:     cfg.Window,
		maxRetries: cfg.MaxRetries,
		now:        cfg.Now,
	}

	if t.limit <= 0 {
		t.limit = DefaultDailyLimit
	}

	if t.window <= 0 {
		t.window = DefaultWindow
	}

	if t.maxRetries <= 0 {
		t.maxRetries = DefaultMaxRetries
	}

	if t.now == nil {
		t.now = time.Now
	}

	return t
}

func (t *Tracker) Limit() int {
	return t.limit
}

func (t *Tracker) Window() time.Duration {
	return t.window
}

// postgres keeps microseconds; truncating keeps CAS comparisons exact
func (t *Tracker) clock() time.Time {
	return t.now().UTC().Truncate(time.Microsecond)
}

// CheckAndConsume evaluates one AI request for userID and commits the new
// counters with a compare-and-swap. A lost swap re-reads and re-evaluates, so
// two concurrent requests can never both take the last slot.
func (t *Tracker) CheckAndConsume(ctx context.Context, userID string) (*Decision, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		now := t.clock()

		record, err := t.store.GetOrCreateUsage(ctx, userID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to load usage: %w", err)
		}

		decision := Evaluate(record, now, t.limit, t.window)
		if !decision.Persist {
			return &decision, nil
		}

		swapped, err := t.store.CompareAndSwapUsage(ctx, record, decision.Record)
		if err != nil {
			return nil, fmt.Errorf("failed to update usage: %w", err)
		}

		if swapped {
			return &decision, nil
		}
	}

	return nil, ErrContention
}

// Refund gives back the slot a decision consumed. Nothing happens when the
// decision did not consume, the window has rolled over since, or the counter
// is already zero.
func (t *Tracker) Refund(ctx context.Context, d *Decision) error {
	if d == nil || !d.Allowed || !d.Persist {
		return nil
	}

	userID := d.Record.UserID

	for attempt := 0; attempt < t.maxRetries; attempt++ {
		record, err := t.store.GetOrCreateUsage(ctx, userID, t.clock())
		if err != nil {
			return fmt.Errorf("failed to load usage: %w", err)
		}

		if !record.LastConversationReset.Equal(d.Record.LastConversationReset) {
			return nil
		}

		if record.DailyAIConversationsUsed == 0 {
			return nil
		}

		next := record
		next.DailyAIConversationsUsed--

		swapped, err := t.store.CompareAndSwapUsage(ctx, record, next)
		if err != nil {
			return fmt.Errorf("failed to refund usage: %w", err)
		}

		if swapped {
			return nil
		}
	}

	return ErrContention
}

// returns the allowance for userID without consuming a slot
func (t *Tracker) Usage(ctx context.Context, userID string) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, ErrNoUserID
	}

	now := t.clock()

	record, err := t.store.GetOrCreateUsage(ctx, userID, now)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load usage: %w", err)
	}

	return snapshotOf(record, now, t.limit, t.window), nil
}

// allowance left after a decision was taken
func (t *Tracker) SnapshotAfter(d *Decision) Snapshot {
	if d == nil {
		return Snapshot{Limit: t.limit, Remaining: t.limit}
	}

	return snapshotOf(d.Record, t.clock(), t.limit, t.window)
}
