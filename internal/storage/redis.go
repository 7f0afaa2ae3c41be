package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// connects to redis; an empty url means redis is not configured
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // connection never became usable
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}
