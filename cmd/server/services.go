package main

import (
	"fmt"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/indexer"
	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/internal/ratelimit"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/conversations"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// creates and configures all service clients
func InitializeServices(
	cfg *config.Config,
	db *pgxpool.Pool,
	rdb *redis.Client,
	userRepo *users.Repository,
	characterRepo *characters.Repository,
	conversationRepo *conversations.Repository,
) (*Services, error) {
	llmClient, err := llm.NewLLMWithConfig(llm.ConfigFrom(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	tracker := quota.NewTracker(quota.NewPostgresStore(db), quota.Config{
		DailyLimit: cfg.Quota.DailyLimit,
		Window:     cfg.Quota.Window,
	})

	agentClient := agent.New(agent.Deps{
		Characters:    characterRepo,
		Conversations: conversationRepo,
		Users:         userRepo,
		Quota:         tracker,
		Generator:     llmClient,
		Images:        llmClient,
	})

	// without redis the dirty set lives in process and is lost on restart;
	// the startup backfill picks those characters up again
	var queue indexer.Queue = indexer.NewMemoryQueue()
	if rdb != nil {
		queue = indexer.NewRedisQueue(rdb)
	}

	embeddingIndexer := indexer.New(queue, characterRepo, llmClient, indexer.Config{})

	limitConfig := ratelimit.DefaultConfig()
	limitConfig.Rate = cfg.RateLimit

	limiter, err := ratelimit.New(limitConfig, rdb)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	return &Services{
		LLM:     llmClient,
		Agent:   agentClient,
		Quota:   tracker,
		Indexer: embeddingIndexer,
		Limiter: limiter,
	}, nil
}
