package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// store whose calls can be failed or made to lose swaps
type mockStore struct {
	*MemoryStore

	getErr   error
	casErr   error
	loseCAS  int
	casCalls int
}

func (m *mockStore) GetOrCreateUsage(ctx context.Context, userID string, now time.Time) (UsageRecord, error) {
	if m.getErr != nil {
		return UsageRecord{}, m.getErr
	}

	return m.MemoryStore.GetOrCreateUsage(ctx, userID, now)
}

func (m *mockStore) CompareAndSwapUsage(ctx context.Context, prev, next UsageRecord) (bool, error) {
	m.casCalls++

	if m.casErr != nil {
		return false, m.casErr
	}

	if m.loseCAS > 0 {
		m.loseCAS--
		return false, nil
	}

	return m.MemoryStore.CompareAndSwapUsage(ctx, prev, next)
}

func newTestTracker(store Store, now time.Time) *Tracker {
	return NewTracker(store, Config{
		DailyLimit: 5,
		Window:     24 * time.Hour,
		Now:        func() time.Time { return now },
	})
}

func TestNewTracker_Defaults(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), Config{})

	assert.Equal(t, DefaultDailyLimit, tr.Limit())
	assert.Equal(t, DefaultWindow, tr.Window())
	assert.Equal(t, DefaultMaxRetries, tr.maxRetries)
	assert.NotNil(t, tr.now)
}

func TestCheckAndConsume_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("A: used 4 becomes 5", func(t *testing.T) {
		store := NewMemoryStore()
		store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 4, LastConversationReset: baseTime.Add(-10 * time.Minute)})

		d, err := newTestTracker(store, baseTime).CheckAndConsume(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)

		rec, _ := store.Get("u1")
		assert.Equal(t, 5, rec.DailyAIConversationsUsed)
	})

	t.Run("B: used 5 is denied and untouched", func(t *testing.T) {
		store := NewMemoryStore()
		stored := UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-10 * time.Minute)}
		store.Put(stored)

		d, err := newTestTracker(store, baseTime).CheckAndConsume(ctx, "u1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)

		var exceeded *ExceededError
		require.True(t, errors.As(d.Reason, &exceeded))
		assert.Equal(t, 5, exceeded.Limit)

		rec, _ := store.Get("u1")
		assert.Equal(t, stored, rec)
	})

	t.Run("C: expired window resets to 1", func(t *testing.T) {
		store := NewMemoryStore()
		store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-25 * time.Hour)})

		d, err := newTestTracker(store, baseTime).CheckAndConsume(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.True(t, d.Reset)

		rec, _ := store.Get("u1")
		assert.Equal(t, 1, rec.DailyAIConversationsUsed)
		assert.True(t, rec.LastConversationReset.Equal(baseTime))
	})

	t.Run("E: premium with 999 is unchanged", func(t *testing.T) {
		store := NewMemoryStore()
		stored := UsageRecord{UserID: "u1", IsPremium: true, DailyAIConversationsUsed: 999, LastConversationReset: baseTime.Add(-10 * time.Minute)}
		store.Put(stored)

		d, err := newTestTracker(store, baseTime).CheckAndConsume(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)

		rec, _ := store.Get("u1")
		assert.Equal(t, stored, rec)
	})
}

func TestCheckAndConsume_CreatesRecord(t *testing.T) {
	store := NewMemoryStore()

	d, err := newTestTracker(store, baseTime).CheckAndConsume(context.Background(), "new-user")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	rec, ok := store.Get("new-user")
	require.True(t, ok)
	assert.Equal(t, 1, rec.DailyAIConversationsUsed)
	assert.True(t, rec.LastConversationReset.Equal(baseTime))
}

func TestCheckAndConsume_SixthRequestDenied(t *testing.T) {
	store := NewMemoryStore()
	tr := newTestTracker(store, baseTime)

	for i := 0; i < 5; i++ {
		d, err := tr.CheckAndConsume(context.Background(), "u1")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i+1)
	}

	d, err := tr.CheckAndConsume(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestCheckAndConsume_EmptyUser(t *testing.T) {
	_, err := newTestTracker(NewMemoryStore(), baseTime).CheckAndConsume(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoUserID)
}

func TestCheckAndConsume_StoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("read failure is surfaced", func(t *testing.T) {
		store := &mockStore{MemoryStore: NewMemoryStore(), getErr: boom}

		d, err := newTestTracker(store, baseTime).CheckAndConsume(context.Background(), "u1")
		assert.Nil(t, d)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("write failure is surfaced", func(t *testing.T) {
		store := &mockStore{MemoryStore: NewMemoryStore(), casErr: boom}

		d, err := newTestTracker(store, baseTime).CheckAndConsume(context.Background(), "u1")
		assert.Nil(t, d)
		assert.ErrorIs(t, err, boom)
	})
}

func TestCheckAndConsume_RetriesLostSwap(t *testing.T) {
	store := &mockStore{MemoryStore: NewMemoryStore(), loseCAS: 2}

	d, err := newTestTracker(store, baseTime).CheckAndConsume(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, store.casCalls)

	rec, _ := store.Get("u1")
	assert.Equal(t, 1, rec.DailyAIConversationsUsed)
}

func TestCheckAndConsume_Contention(t *testing.T) {
	store := &mockStore{MemoryStore: NewMemoryStore(), loseCAS: 100}
	tr := NewTracker(store, Config{MaxRetries: 3, Now: func() time.Time { return baseTime }})

	_, err := tr.CheckAndConsume(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrContention)
	assert.Equal(t, 3, store.casCalls)
}

func TestCheckAndConsume_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestTracker(NewMemoryStore(), baseTime).CheckAndConsume(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckAndConsume_ConcurrentRequests(t *testing.T) {
	store := NewMemoryStore()
	store.Put(UsageRecord{UserID: "u1", LastConversationReset: baseTime.Add(-time.Minute)})

	tr := NewTracker(store, Config{
		DailyLimit: 5,
		MaxRetries: 1000,
		Now:        func() time.Time { return baseTime },
	})

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
		denied  atomic.Int32
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			d, err := tr.CheckAndConsume(context.Background(), "u1")
			if !assert.NoError(t, err) {
				return
			}

			if d.Allowed {
				allowed.Add(1)
			} else {
				denied.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load())
	assert.Equal(t, int32(45), denied.Load())

	rec, _ := store.Get("u1")
	assert.Equal(t, 5, rec.DailyAIConversationsUsed)
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the consumed slot", func(t *testing.T) {
		store := NewMemoryStore()
		store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 4, LastConversationReset: baseTime.Add(-time.Hour)})
		tr := newTestTracker(store, baseTime)

		d, err := tr.CheckAndConsume(ctx, "u1")
		require.NoError(t, err)
		require.NoError(t, tr.Refund(ctx, d))

		rec, _ := store.Get("u1")
		assert.Equal(t, 4, rec.DailyAIConversationsUsed)
	})

	t.Run("refund after reset returns to zero", func(t *testing.T) {
		store := NewMemoryStore()
		store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-30 * time.Hour)})
		tr := newTestTracker(store, baseTime)

		d, err := tr.CheckAndConsume(ctx, "u1")
		require.NoError(t, err)
		require.NoError(t, tr.Refund(ctx, d))

		rec, _ := store.Get("u1")
		assert.Equal(t, 0, rec.DailyAIConversationsUsed)
		assert.True(t, rec.LastConversationReset.Equal(baseTime))
	})

	t.Run("skipped once the window rolled over", func(t *testing.T) {
		store := NewMemoryStore()
		tr := newTestTracker(store, baseTime)

		d, err := tr.CheckAndConsume(ctx, "u1")
		require.NoError(t, err)

		rolled := baseTime.Add(25 * time.Hour)
		store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 1, LastConversationReset: rolled})

		require.NoError(t, tr.Refund(ctx, d))

		rec, _ := store.Get("u1")
		assert.Equal(t, 1, rec.DailyAIConversationsUsed)
	})

	t.Run("denied and premium decisions are no-ops", func(t *testing.T) {
		store := &mockStore{MemoryStore: NewMemoryStore()}
		tr := newTestTracker(store, baseTime)

		require.NoError(t, tr.Refund(ctx, nil))
		require.NoError(t, tr.Refund(ctx, &Decision{Allowed: false}))
		require.NoError(t, tr.Refund(ctx, &Decision{Allowed: true, Persist: false}))
		assert.Zero(t, store.casCalls)
	})
}

func TestUsage(t *testing.T) {
	store := NewMemoryStore()
	store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 2, LastConversationReset: baseTime.Add(-time.Hour)})
	tr := newTestTracker(store, baseTime)

	s, err := tr.Usage(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Used)
	assert.Equal(t, 3, s.Remaining)
	assert.Equal(t, 5, s.Limit)

	// reading does not consume
	rec, _ := store.Get("u1")
	assert.Equal(t, 2, rec.DailyAIConversationsUsed)
}

func TestSnapshotAfter(t *testing.T) {
	store := NewMemoryStore()
	store.Put(UsageRecord{UserID: "u1", DailyAIConversationsUsed: 3, LastConversationReset: baseTime.Add(-time.Hour)})
	tr := newTestTracker(store, baseTime)

	d, err := tr.CheckAndConsume(context.Background(), "u1")
	require.NoError(t, err)

	s := tr.SnapshotAfter(d)
	assert.Equal(t, 4, s.Used)
	assert.Equal(t, 1, s.Remaining)

	assert.Equal(t, 5, tr.SnapshotAfter(nil).Remaining)
}
