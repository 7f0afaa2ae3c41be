package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"codeberg.org/talespin/server/internal/logger"
)

const DefaultRefreshInterval = 5 * time.Minute

// obtains a fresh token for the current session
type TokenRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Refresher keeps a session token alive for as long as the session lasts.
// Start ties it to a login; Stop, or canceling the context given to Start,
// ends it. A refresh rejected with 401 clears the token and ends it too.
type Refresher struct {
	source    TokenRefresher
	tokens    TokenStore
	interval  time.Duration
	onExpired func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(source TokenRefresher, tokens TokenStore, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	return &Refresher{
		source:   source,
		tokens:   tokens,
		interval: interval,
	}
}

// called once when the session can no longer be refreshed
func (r *Refresher) OnExpired(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpired = fn
}

// begins refreshing; a second Start while running is a no-op
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		select {
		case <-r.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(ctx, r.done)
}

// ends refreshing and waits for the loop to exit; safe to call at any time
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done == nil {
		return false
	}

	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if !r.refresh(ctx) {
				return
			}
		}
	}
}

// reports whether the loop should keep going
func (r *Refresher) refresh(ctx context.Context) bool {
	if r.tokens.Token() == "" {
		return false
	}

	reqCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	token, err := r.source.Refresh(reqCtx)

	switch {
	case err == nil:
		r.tokens.SetToken(token)
		logger.Debug("session token refreshed")
		return true

	case errors.Is(err, ErrUnauthorized):
		logger.Warn("session expired, stopping token refresh")
		r.tokens.Clear()

		r.mu.Lock()
		fn := r.onExpired
		r.mu.Unlock()

		if fn != nil {
			fn()
		}

		return false

	case ctx.Err() != nil:
		return false

	default:
		// transient; try again next tick
		logger.Warn("failed to refresh session token", "error", err)
		return true
	}
}
