package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"codeberg.org/talespin/server/internal/logger"
	"github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "talespin:feed"

// Relay over redis pub/sub so clients on every instance see every event
type RedisRelay struct {
	client  *redis.Client
	channel string
}

func NewRedisRelay(client *redis.Client, channel string) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}

	return &RedisRelay{client: client, channel: channel}
}

func (r *RedisRelay) Publish(ctx context.Context, msg *Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish feed event: %w", err)
	}

	return nil
}

// Run delivers relayed events to hub until ctx is canceled.
func (r *RedisRelay) Run(ctx context.Context, hub *Hub) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close() //nolint:errcheck // best-effort cleanup

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	logger.Info("feed relay subscribed", "channel", r.channel)

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil

		case m, ok := <-ch:
			if !ok {
				return nil
			}

			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				logger.Warn("dropping malformed feed event", "error", err)
				continue
			}

			if err := hub.Deliver(ctx, &msg); err != nil {
				return nil
			}
		}
	}
}
