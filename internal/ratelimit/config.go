package ratelimit

import (
	"strings"
	"time"
)

// holds rate limiter configuration
type Config struct {
	// ulule formatted rate, e.g. "120-M"
	Rate string

	// redis key prefix when the store is shared
	Prefix string

	// paths that bypass the limiter (health checks, etc.)
	ExemptPaths []string
}

// returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Rate:   "120-M",
		Prefix: "talespin:ratelimit",
		ExemptPaths: []string{
			"/health",
			"/metrics",
			"/api/v1/ws", // websocket connections are persistent, not burst requests
		},
	}
}

// checks if a path bypasses the limiter
func (c *Config) IsExemptPath(path string) bool {
	for _, ep := range c.ExemptPaths {
		if path == ep || strings.HasPrefix(path, ep+"/") {
			return true
		}
	}

	return false
}

// seconds until the window resets, never negative
func retryAfter(reset int64, now time.Time) int64 {
	return max(reset-now.Unix(), 0)
}
