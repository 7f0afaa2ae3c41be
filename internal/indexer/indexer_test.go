package indexer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"codeberg.org/talespin/server/talespin/characters"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu         sync.Mutex
	items      map[string]*characters.Character
	embeddings map[string][]float32
	getErr     map[string]error
	setErr     error
}

func newFakeRepo(ids ...string) *fakeRepo {
	r := &fakeRepo{
		items:      make(map[string]*characters.Character),
		embeddings: make(map[string][]float32),
		getErr:     make(map[string]error),
	}

	for _, id := range ids {
		r.items[id] = &characters.Character{ID: id, Name: "name-" + id}
	}

	return r
}

func (r *fakeRepo) Get(_ context.Context, id string) (*characters.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.getErr[id]; err != nil {
		return nil, err
	}

	c, ok := r.items[id]
	if !ok {
		return nil, characters.ErrCharacterNotFound
	}

	return c, nil
}

func (r *fakeRepo) SetEmbedding(_ context.Context, id string, embedding []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.setErr != nil {
		return r.setErr
	}

	if _, ok := r.items[id]; !ok {
		return characters.ErrCharacterNotFound
	}

	r.embeddings[id] = embedding
	return nil
}

func (r *fakeRepo) ListMissingEmbeddings(_ context.Context, limit int) ([]characters.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0)
	for id := range r.items {
		if _, ok := r.embeddings[id]; !ok {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	out := []characters.Character{}
	for _, id := range ids {
		if len(out) == limit {
			break
		}

		out = append(out, *r.items[id])
	}

	return out, nil
}

func (r *fakeRepo) embedded() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.embeddings)
}

type fakeEmbedder struct {
	mu    sync.Mutex
	err   error
	calls int
	texts []string
}

func (e *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	out, err := e.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return out[0], nil
}

func (e *fakeEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls++
	e.texts = append(e.texts, texts...)

	if e.err != nil {
		return nil, e.err
	}

	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}

	return out, nil
}

func TestFlush(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds queued characters", func(t *testing.T) {
		repo := newFakeRepo("a", "b")
		queue := NewMemoryQueue()
		emb := &fakeEmbedder{}
		ix := New(queue, repo, emb, Config{})

		require.NoError(t, ix.Enqueue(ctx, "a"))
		require.NoError(t, ix.Enqueue(ctx, "b"))
		require.NoError(t, ix.Enqueue(ctx, "a"))

		n, err := ix.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 2, repo.embedded())
		assert.Equal(t, 1, emb.calls)
		assert.Zero(t, queue.Len())
	})

	t.Run("empty queue", func(t *testing.T) {
		emb := &fakeEmbedder{}
		ix := New(NewMemoryQueue(), newFakeRepo(), emb, Config{})

		n, err := ix.Flush(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, emb.calls)
	})

	t.Run("deleted characters are dropped", func(t *testing.T) {
		repo := newFakeRepo("a")
		queue := NewMemoryQueue()
		ix := New(queue, repo, &fakeEmbedder{}, Config{})

		require.NoError(t, queue.MarkDirty(ctx, "a", "gone"))

		n, err := ix.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Zero(t, queue.Len())
	})

	t.Run("embedder failure requeues", func(t *testing.T) {
		repo := newFakeRepo("a", "b")
		queue := NewMemoryQueue()
		ix := New(queue, repo, &fakeEmbedder{err: errors.New("rate limited")}, Config{})

		require.NoError(t, queue.MarkDirty(ctx, "a", "b"))

		_, err := ix.Flush(ctx)
		require.Error(t, err)
		assert.Equal(t, 2, queue.Len())
		assert.Zero(t, repo.embedded())
	})

	t.Run("lookup failure requeues that id", func(t *testing.T) {
		repo := newFakeRepo("a", "b")
		repo.getErr["b"] = errors.New("timeout")
		queue := NewMemoryQueue()
		ix := New(queue, repo, &fakeEmbedder{}, Config{})

		require.NoError(t, queue.MarkDirty(ctx, "a", "b"))

		n, err := ix.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, queue.Len())
	})

	t.Run("store failure requeues", func(t *testing.T) {
		repo := newFakeRepo("a")
		repo.setErr = errors.New("connection reset")
		queue := NewMemoryQueue()
		ix := New(queue, repo, &fakeEmbedder{}, Config{})

		require.NoError(t, queue.MarkDirty(ctx, "a"))

		n, err := ix.Flush(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 1, queue.Len())
	})
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()

	t.Run("walks every batch", func(t *testing.T) {
		repo := newFakeRepo("a", "b", "c", "d", "e")
		emb := &fakeEmbedder{}
		ix := New(NewMemoryQueue(), repo, emb, Config{BatchSize: 2})

		n, err := ix.Backfill(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, 3, emb.calls)
		assert.Equal(t, 5, repo.embedded())
		assert.Equal(t, "name-a\n\nPersonality: \nStyle: ", emb.texts[0])
	})

	t.Run("stops when nothing can be stored", func(t *testing.T) {
		repo := newFakeRepo("a")
		repo.setErr = errors.New("read only")
		ix := New(NewMemoryQueue(), repo, &fakeEmbedder{}, Config{})

		n, err := ix.Backfill(ctx)
		require.Error(t, err)
		assert.Zero(t, n)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New(NewMemoryQueue(), newFakeRepo("a"), &fakeEmbedder{}, Config{}).Backfill(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStartStop(t *testing.T) {
	repo := newFakeRepo("a")
	queue := NewMemoryQueue()
	ix := New(queue, repo, &fakeEmbedder{}, Config{Interval: time.Hour})

	ix.Start()
	require.NoError(t, ix.Enqueue(context.Background(), "a"))

	// stop runs a final pass
	ix.Stop()
	ix.Stop()

	assert.Equal(t, 1, repo.embedded())
}

func TestRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	q := NewRedisQueue(client)

	require.NoError(t, q.MarkDirty(ctx))
	require.NoError(t, q.MarkDirty(ctx, "a", "b", "a"))

	members, err := mr.SMembers(keyDirtyCharacters)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	ids, err := q.PopDirty(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	ids, err = q.PopDirty(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
