package ratelimit

import (
	"fmt"
	"strconv"
	"time"

	"codeberg.org/talespin/server/internal/errors"
	"codeberg.org/talespin/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// per-client request limiter for the REST API
type Limiter struct {
	config  *Config
	limiter *limiter.Limiter
}

// creates a limiter backed by redis when a client is given, in memory otherwise
func New(config *Config, client *redis.Client) (*Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(config.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", config.Rate, err)
	}

	var store limiter.Store

	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   config.Prefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          config.Prefix,
			CleanUpInterval: time.Minute,
		})
	}

	return &Limiter{
		config:  config,
		limiter: limiter.New(store, rate),
	}, nil
}

// limits by client ip
func (l *Limiter) Middleware() gin.HandlerFunc {
	return l.middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	})
}

// limits by authenticated user, falling back to client ip
func (l *Limiter) UserMiddleware() gin.HandlerFunc {
	return l.middleware(func(c *gin.Context) string {
		if userID := c.GetString("user_id"); userID != "" {
			return "user:" + userID
		}

		return "ip:" + c.ClientIP()
	})
}

func (l *Limiter) middleware(key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.config.IsExemptPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		k := key(c)

		result, err := l.limiter.Get(c.Request.Context(), k)
		if err != nil {
			// fail open
			logger.ErrorErr(err, "failed to check rate limit", "key", k)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset, 10))

		if result.Reached {
			logger.Warn("rate limit exceeded", "key", k, "path", c.Request.URL.Path)

			c.Header("Retry-After", strconv.FormatInt(retryAfter(result.Reset, time.Now()), 10))
			errors.TooManyRequests(c, "too many requests. please slow down.")
			c.Abort()

			return
		}

		c.Next()
	}
}
