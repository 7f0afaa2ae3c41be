package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/talespin/characters"
)

func New(queue Queue, repo Repository, embedder llm.Embedder, cfg Config) *Indexer {
	ix := &Indexer{
		queue:     queue,
		repo:      repo,
		embedder:  embedder,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		stopCh:    make(chan struct{}),
	}

	if ix.interval <= 0 {
		ix.interval = DefaultInterval
	}

	if ix.batchSize <= 0 {
		ix.batchSize = DefaultBatchSize
	}

	return ix
}

// schedules a character for (re-)embedding
func (ix *Indexer) Enqueue(ctx context.Context, characterID string) error {
	return ix.queue.MarkDirty(ctx, characterID)
}

// begins the background indexing loop
func (ix *Indexer) Start() {
	ix.wg.Add(1)
	go ix.run()
	logger.Info("embedding indexer started", "interval", ix.interval.String())
}

// stops the loop after a final pass; safe to call more than once
func (ix *Indexer) Stop() {
	ix.stopOnce.Do(func() {
		close(ix.stopCh)
	})

	ix.wg.Wait()
}

func (ix *Indexer) run() {
	defer ix.wg.Done()

	ticker := time.NewTicker(ix.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ix.tick()
		case <-ix.stopCh:
			ix.tick()
			logger.Info("embedding indexer stopped")
			return
		}
	}
}

func (ix *Indexer) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := ix.Flush(ctx)
	if err != nil {
		logger.ErrorErr(err, "failed to index characters")
		return
	}

	if n > 0 {
		logger.Debug("indexed characters", "count", n)
	}
}

// Flush embeds one batch of queued characters and reports how many were
// stored. Ids that fail are put back for the next pass; deleted characters
// are dropped.
func (ix *Indexer) Flush(ctx context.Context) (int, error) {
	ids, err := ix.queue.PopDirty(ctx, ix.batchSize)
	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, nil
	}

	batch := make([]characters.Character, 0, len(ids))

	for _, id := range ids {
		c, err := ix.repo.Get(ctx, id)
		if errors.Is(err, characters.ErrCharacterNotFound) {
			continue
		}

		if err != nil {
			ix.requeue(ctx, id)
			continue
		}

		batch = append(batch, *c)
	}

	n, err := ix.embed(ctx, batch)
	if err != nil {
		for _, c := range batch {
			ix.requeue(ctx, c.ID)
		}

		return 0, err
	}

	return n, nil
}

// Backfill embeds every character that has no embedding yet, batch by batch,
// and returns how many were stored.
func (ix *Indexer) Backfill(ctx context.Context) (int, error) {
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := ix.repo.ListMissingEmbeddings(ctx, ix.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list characters: %w", err)
		}

		if len(batch) == 0 {
			return total, nil
		}

		n, err := ix.embed(ctx, batch)
		total += n

		if err != nil {
			return total, err
		}

		// nothing stored means the same rows would be listed again
		if n == 0 {
			return total, fmt.Errorf("stored none of %d embeddings", len(batch))
		}

		logger.Info("backfilled embeddings", "batch", n, "total", total)
	}
}

func (ix *Indexer) embed(ctx context.Context, batch []characters.Character) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].EmbeddingText()
	}

	embeddings, err := ix.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(batch) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(batch), len(embeddings))
	}

	stored := 0

	for i, c := range batch {
		if err := ix.repo.SetEmbedding(ctx, c.ID, embeddings[i]); err != nil {
			if !errors.Is(err, characters.ErrCharacterNotFound) {
				logger.ErrorErr(err, "failed to store embedding", "character_id", c.ID)
				ix.requeue(ctx, c.ID)
			}

			continue
		}

		stored++
	}

	return stored, nil
}

func (ix *Indexer) requeue(ctx context.Context, id string) {
	if err := ix.queue.MarkDirty(ctx, id); err != nil {
		logger.ErrorErr(err, "failed to requeue character", "character_id", id)
	}
}
