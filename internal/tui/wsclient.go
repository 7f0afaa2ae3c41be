package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"codeberg.org/talespin/server/internal/logger"
	ws "codeberg.org/talespin/server/internal/websocket"
	"github.com/gorilla/websocket"
)

const (
	reconnectDelay = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	writeWait      = 10 * time.Second
	eventBuffer    = 64
)

// follows the live community feed over the websocket endpoint
type FeedStream struct {
	endpoint string
	token    func() string
	events   chan ws.Message

	mu   sync.Mutex
	conn *websocket.Conn
}

// converts an http API endpoint into the feed websocket URL
func StreamURL(apiEndpoint string) (string, error) {
	u, err := url.Parse(strings.TrimRight(apiEndpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}

	u.Path += "/api/v1/ws"

	return u.String(), nil
}

// token is read on every (re)connect so refreshed tokens are picked up
func NewFeedStream(endpoint string, token func() string) *FeedStream {
	return &FeedStream{
		endpoint: endpoint,
		token:    token,
		events:   make(chan ws.Message, eventBuffer),
	}
}

func (s *FeedStream) Events() <-chan ws.Message {
	return s.events
}

// Run keeps the stream connected until ctx is done, then closes Events.
func (s *FeedStream) Run(ctx context.Context) {
	defer close(s.events)

	for {
		if err := s.connect(ctx); err != nil {
			logger.Debug("feed stream disconnected", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *FeedStream) connect(ctx context.Context) error {
	target := s.endpoint
	if t := s.token(); t != "" {
		target += "?token=" + url.QueryEscape(t)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go s.pingPump(ctx, conn, done)

	for {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // next read reports the failure

		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		switch msg.Type {
		case ws.TypeWelcome, ws.TypePong:
			continue
		case ws.TypeServerShutdown:
			return fmt.Errorf("server shutting down")
		}

		// a slow UI drops events rather than stalling the socket
		select {
		case s.events <- msg:
		default:
		}
	}
}

// sends periodic pings to keep the connection alive
func (s *FeedStream) pingPump(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case <-ctx.Done():
			// unblocks the read loop
			conn.Close()
			return

		case <-ticker.C:
			s.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // write below reports the failure
			err := conn.WriteMessage(websocket.PingMessage, nil)
			s.mu.Unlock()

			if err != nil {
				return
			}
		}
	}
}
