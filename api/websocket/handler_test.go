package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/talespin/server/internal/auth"
	ws "codeberg.org/talespin/server/internal/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T, hub *ws.Hub) string {
	t.Helper()

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), hub, func(*http.Request) bool { return true })

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
}

func readMessage(t *testing.T, conn *websocket.Conn) ws.Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck

	var msg ws.Message
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestWebSocketHandler_StreamsFeedEvents(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	token, err := auth.GenerateJWT("user-1", "u@example.com")
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(newServer(t, hub)+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	assert.Equal(t, ws.TypeWelcome, readMessage(t, conn).Type)

	require.NoError(t, hub.Publish(context.Background(), ws.TypeLikeUpdated, ws.LikeUpdatedPayload{
		PostID:     "p1",
		UserID:     "user-2",
		Liked:      true,
		LikesCount: 7,
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, ws.TypeLikeUpdated, msg.Type)

	var payload ws.LikeUpdatedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, 7, payload.LikesCount)

	// pings are answered
	require.NoError(t, conn.WriteJSON(ws.Message{Type: ws.TypePing}))
	assert.Equal(t, ws.TypePong, readMessage(t, conn).Type)
}

func TestWebSocketHandler_Anonymous(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Shutdown()

	conn, _, err := websocket.DefaultDialer.Dial(newServer(t, hub), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, ws.TypeWelcome, readMessage(t, conn).Type)
}

func TestWebSocketHandler_InvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hub := ws.NewHub()

	_, resp, err := websocket.DefaultDialer.Dial(newServer(t, hub)+"?token=garbage", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
