package quota

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		record      UsageRecord
		wantAllowed bool
		wantUsed    int
		wantReset   bool
		wantPersist bool
	}{
		{
			name:        "fifth chat inside window",
			record:      UsageRecord{UserID: "u1", DailyAIConversationsUsed: 4, LastConversationReset: baseTime.Add(-10 * time.Minute)},
			wantAllowed: true,
			wantUsed:    5,
			wantPersist: true,
		},
		{
			name:        "limit reached inside window",
			record:      UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-10 * time.Minute)},
			wantAllowed: false,
			wantUsed:    5,
		},
		{
			name:        "expired window resets to one",
			record:      UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-25 * time.Hour)},
			wantAllowed: true,
			wantUsed:    1,
			wantReset:   true,
			wantPersist: true,
		},
		{
			name:        "premium ignores counter",
			record:      UsageRecord{UserID: "u1", IsPremium: true, DailyAIConversationsUsed: 999, LastConversationReset: baseTime.Add(-10 * time.Minute)},
			wantAllowed: true,
			wantUsed:    999,
		},
		{
			name:        "window boundary is expired",
			record:      UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-24 * time.Hour)},
			wantAllowed: true,
			wantUsed:    1,
			wantReset:   true,
			wantPersist: true,
		},
		{
			name:        "one nanosecond before boundary is active",
			record:      UsageRecord{UserID: "u1", DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-24*time.Hour + time.Nanosecond)},
			wantAllowed: false,
			wantUsed:    5,
		},
		{
			name:        "reset in the future counts as active",
			record:      UsageRecord{UserID: "u1", DailyAIConversationsUsed: 2, LastConversationReset: baseTime.Add(time.Minute)},
			wantAllowed: true,
			wantUsed:    3,
			wantPersist: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.record, baseTime, DefaultDailyLimit, DefaultWindow)

			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.wantUsed, d.Record.DailyAIConversationsUsed)
			assert.Equal(t, tt.wantReset, d.Reset)
			assert.Equal(t, tt.wantPersist, d.Persist)
			assert.Equal(t, tt.record, d.Previous)

			if tt.wantReset {
				assert.True(t, d.Record.LastConversationReset.Equal(baseTime))
			} else {
				assert.True(t, d.Record.LastConversationReset.Equal(tt.record.LastConversationReset))
			}
		})
	}
}

func TestEvaluate_DenialCarriesLimit(t *testing.T) {
	reset := baseTime.Add(-10 * time.Minute)
	d := Evaluate(UsageRecord{DailyAIConversationsUsed: 5, LastConversationReset: reset}, baseTime, 5, DefaultWindow)

	require.False(t, d.Allowed)

	var exceeded *ExceededError
	require.True(t, errors.As(d.Reason, &exceeded))
	assert.Equal(t, 5, exceeded.Limit)
	assert.True(t, exceeded.ResetsAt.Equal(reset.Add(DefaultWindow)))
	assert.Equal(t, "Daily limit of 5 chats exceeded", exceeded.Error())
}

func TestEvaluate_Properties(t *testing.T) {
	const limit = 5

	offsets := []time.Duration{0, time.Second, time.Hour, 23*time.Hour + 59*time.Minute}

	t.Run("under limit increments by exactly one", func(t *testing.T) {
		for used := 0; used < limit; used++ {
			for _, off := range offsets {
				rec := UsageRecord{DailyAIConversationsUsed: used, LastConversationReset: baseTime.Add(-off)}
				d := Evaluate(rec, baseTime, limit, DefaultWindow)

				assert.True(t, d.Allowed)
				assert.Equal(t, used+1, d.Record.DailyAIConversationsUsed)
			}
		}
	})

	t.Run("at limit denies without mutation", func(t *testing.T) {
		for _, off := range offsets {
			rec := UsageRecord{DailyAIConversationsUsed: limit, LastConversationReset: baseTime.Add(-off)}
			d := Evaluate(rec, baseTime, limit, DefaultWindow)

			assert.False(t, d.Allowed)
			assert.False(t, d.Persist)
			assert.Equal(t, rec, d.Record)
		}
	})

	t.Run("expired window always resets to one", func(t *testing.T) {
		for _, used := range []int{0, 1, limit, limit + 3, 1000} {
			for _, age := range []time.Duration{24 * time.Hour, 25 * time.Hour, 30 * 24 * time.Hour} {
				rec := UsageRecord{DailyAIConversationsUsed: used, LastConversationReset: baseTime.Add(-age)}
				d := Evaluate(rec, baseTime, limit, DefaultWindow)

				assert.True(t, d.Allowed)
				assert.Equal(t, 1, d.Record.DailyAIConversationsUsed)
				assert.True(t, d.Record.LastConversationReset.Equal(baseTime))
			}
		}
	})

	t.Run("premium is never mutated", func(t *testing.T) {
		for _, used := range []int{0, limit, 999} {
			for _, age := range []time.Duration{time.Minute, 48 * time.Hour} {
				rec := UsageRecord{IsPremium: true, DailyAIConversationsUsed: used, LastConversationReset: baseTime.Add(-age)}
				d := Evaluate(rec, baseTime, limit, DefaultWindow)

				assert.True(t, d.Allowed)
				assert.False(t, d.Persist)
				assert.Equal(t, rec, d.Record)
			}
		}
	})
}

func TestSnapshotOf(t *testing.T) {
	t.Run("active window", func(t *testing.T) {
		reset := baseTime.Add(-time.Hour)
		s := snapshotOf(UsageRecord{DailyAIConversationsUsed: 3, LastConversationReset: reset}, baseTime, 5, DefaultWindow)

		assert.Equal(t, 3, s.Used)
		assert.Equal(t, 2, s.Remaining)
		require.NotNil(t, s.ResetsAt)
		assert.True(t, s.ResetsAt.Equal(reset.Add(DefaultWindow)))
	})

	t.Run("expired window reports a fresh allowance", func(t *testing.T) {
		s := snapshotOf(UsageRecord{DailyAIConversationsUsed: 5, LastConversationReset: baseTime.Add(-48 * time.Hour)}, baseTime, 5, DefaultWindow)

		assert.Equal(t, 0, s.Used)
		assert.Equal(t, 5, s.Remaining)
		assert.Nil(t, s.ResetsAt)
	})

	t.Run("premium is unlimited", func(t *testing.T) {
		s := snapshotOf(UsageRecord{IsPremium: true, DailyAIConversationsUsed: 12}, baseTime, 5, DefaultWindow)

		assert.True(t, s.IsPremium)
		assert.Equal(t, -1, s.Remaining)
	})
}
