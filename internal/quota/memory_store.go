package quota

import (
	"context"
	"sync"
	"time"
)

// in-process Store used by tests
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]UsageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]UsageRecord)}
}

func (s *MemoryStore) GetOrCreateUsage(_ context.Context, userID string, now time.Time) (UsageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	if !ok {
		rec = UsageRecord{UserID: userID, LastConversationReset: now}
		s.records[userID] = rec
	}

	return rec, nil
}

func (s *MemoryStore) CompareAndSwapUsage(_ context.Context, prev, next UsageRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[prev.UserID]
	if !ok {
		return false, nil
	}

	if cur.DailyAIConversationsUsed != prev.DailyAIConversationsUsed ||
		!cur.LastConversationReset.Equal(prev.LastConversationReset) {
		return false, nil
	}

	cur.DailyAIConversationsUsed = next.DailyAIConversationsUsed
	cur.LastConversationReset = next.LastConversationReset
	s.records[prev.UserID] = cur

	return true, nil
}

// stores rec as-is, replacing any existing record
func (s *MemoryStore) Put(rec UsageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.UserID] = rec
}

func (s *MemoryStore) Get(userID string) (UsageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[userID]
	return rec, ok
}
