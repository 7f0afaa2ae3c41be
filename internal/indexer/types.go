package indexer

import (
	"context"
	"sync"
	"time"

	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/talespin/characters"
)

const (
	DefaultInterval  = 10 * time.Second
	DefaultBatchSize = 32

	// set of character ids whose embedding is stale
	keyDirtyCharacters = "dirty_characters:embedding"
)

// set of character ids waiting to be embedded
type Queue interface {
	MarkDirty(ctx context.Context, ids ...string) error
	PopDirty(ctx context.Context, n int) ([]string, error)
}

type Repository interface {
	Get(ctx context.Context, id string) (*characters.Character, error)
	SetEmbedding(ctx context.Context, id string, embedding []float32) error
	ListMissingEmbeddings(ctx context.Context, limit int) ([]characters.Character, error)
}

type Config struct {
	Interval  time.Duration
	BatchSize int
}

// keeps character embeddings in step with their text
type Indexer struct {
	queue     Queue
	repo      Repository
	embedder  llm.Embedder
	interval  time.Duration
	batchSize int

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}
