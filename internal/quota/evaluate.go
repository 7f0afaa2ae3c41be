package quota

import "time"

// Evaluate decides a single request against record at now. It has no side
// effects; the caller persists d.Record when d.Persist is set.
func Evaluate(record UsageRecord, now time.Time, limit int, window time.Duration) Decision {
	d := Decision{
		Previous: record,
		Record:   record,
	}

	if record.IsPremium {
		d.Allowed = true
		return d
	}

	if now.Sub(record.LastConversationReset) >= window {
		// the current request is the first of the new window
		d.Allowed = true
		d.Persist = true
		d.Reset = true
		d.Record.DailyAIConversationsUsed = 1
		d.Record.LastConversationReset = now

		return d
	}

	if record.DailyAIConversationsUsed >= limit {
		d.Reason = &ExceededError{
			Limit:    limit,
			ResetsAt: record.LastConversationReset.Add(window),
		}

		return d
	}

	d.Allowed = true
	d.Persist = true
	d.Record.DailyAIConversationsUsed++

	return d
}

// reports the allowance as of now without consuming anything
func snapshotOf(record UsageRecord, now time.Time, limit int, window time.Duration) Snapshot {
	if record.IsPremium {
		return Snapshot{
			IsPremium: true,
			Used:      record.DailyAIConversationsUsed,
			Limit:     limit,
			Remaining: -1,
		}
	}

	if now.Sub(record.LastConversationReset) >= window {
		return Snapshot{Limit: limit, Remaining: limit}
	}

	resetsAt := record.LastConversationReset.Add(window)

	return Snapshot{
		Used:      record.DailyAIConversationsUsed,
		Limit:     limit,
		Remaining: max(limit-record.DailyAIConversationsUsed, 0),
		ResetsAt:  &resetsAt,
	}
}
