package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/talespin/server/internal/config"
	"codeberg.org/talespin/server/internal/indexer"
	"codeberg.org/talespin/server/internal/llm"
	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/storage"
	"codeberg.org/talespin/server/talespin/characters"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ingester <command> [options]")
		fmt.Println("Commands:")
		fmt.Println("  backfill  - embed every character that has no embedding yet")
		fmt.Println("  flush     - embed characters queued as dirty by the API")
		fmt.Println("\nOptions:")
		fmt.Println("  -batch <n>  - characters per embedding call (default 32)")
		os.Exit(1)
	}

	command := os.Args[1]
	flags := config.ParseEmbedFlags(os.Args[2:])

	// load environment variables
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}

	defer db.Close()

	rdb, err := storage.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}

	llmClient, err := llm.NewLLMWithConfig(llm.ConfigFrom(cfg.LLM))
	if err != nil {
		logger.Fatal("failed to create LLM client", "error", err)
	}

	var queue indexer.Queue = indexer.NewMemoryQueue()
	if rdb != nil {
		defer rdb.Close()
		queue = indexer.NewRedisQueue(rdb)
	}

	ix := indexer.New(queue, characters.NewRepository(db), llmClient, indexer.Config{
		BatchSize: flags.BatchSize,
	})

	// route to appropriate command
	switch command {
	case "backfill":
		n, err := ix.Backfill(ctx)
		if err != nil {
			logger.Fatal("backfill failed", "embedded", n, "error", err)
		}

		logger.Info("backfill complete", "embedded", n)

	case "flush":
		if rdb == nil {
			logger.Fatal("flush needs REDIS_URL; the dirty queue only lives in redis")
		}

		total := 0

		for {
			n, err := ix.Flush(ctx)
			if err != nil {
				logger.Fatal("flush failed", "embedded", total, "error", err)
			}

			if n == 0 {
				break
			}

			total += n
		}

		logger.Info("flush complete", "embedded", total)

	default:
		logger.Fatal("unknown command", "command", command)
	}
}
