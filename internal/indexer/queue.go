package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Queue shared by every server instance
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

func (q *RedisQueue) MarkDirty(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	if err := q.client.SAdd(ctx, keyDirtyCharacters, members...).Err(); err != nil {
		return fmt.Errorf("failed to mark characters dirty: %w", err)
	}

	return nil
}

// removes and returns up to n ids
func (q *RedisQueue) PopDirty(ctx context.Context, n int) ([]string, error) {
	ids, err := q.client.SPopN(ctx, keyDirtyCharacters, int64(n)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to pop dirty characters: %w", err)
	}

	return ids, nil
}

// single-instance Queue
type MemoryQueue struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{ids: make(map[string]struct{})}
}

func (q *MemoryQueue) MarkDirty(_ context.Context, ids ...string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range ids {
		q.ids[id] = struct{}{}
	}

	return nil
}

func (q *MemoryQueue) PopDirty(_ context.Context, n int) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, 0, min(n, len(q.ids)))

	for id := range q.ids {
		if len(out) == n {
			break
		}

		out = append(out, id)
		delete(q.ids, id)
	}

	return out, nil
}

func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.ids)
}
