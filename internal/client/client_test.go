package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/talespin/conversations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, NewMemoryTokenStore("tok-1"))
}

func TestClient_Feed(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/community/feed", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Write([]byte(`{"posts":[{"id":"p1","likes_count":3,"liked":true}],"pagination":{"limit":10,"offset":0,"count":1,"has_more":false}}`)) //nolint:errcheck
	})

	feed, err := c.Feed(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "p1", feed.Posts[0].ID)
	assert.Equal(t, 3, feed.Posts[0].LikesCount)
	assert.True(t, feed.Posts[0].Liked)
}

func TestClient_ToggleLike(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/community/posts/p1/like", r.URL.Path)

		w.Write([]byte(`{"post_id":"p1","liked":true,"likes_count":11}`)) //nolint:errcheck
	})

	res, err := c.ToggleLike(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", res.PostID)
	assert.True(t, res.Liked)
	assert.Equal(t, 11, res.LikesCount)
}

func TestClient_Chat(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var req agent.ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Message)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Write([]byte(`{"response":"hi!","conversation_id":"c1","usage":{"used":1,"limit":5,"remaining":4}}`)) //nolint:errcheck
	})

	resp, err := c.Chat(context.Background(), agent.ChatRequest{
		ConversationID:      "c1",
		CharacterID:         "ch1",
		Message:             "hello",
		ConversationHistory: []conversations.Message{},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi!", resp.Response)
	assert.Equal(t, 4, resp.Usage.Remaining)
}

func TestClient_Errors(t *testing.T) {
	t.Run("quota exceeded", func(t *testing.T) {
		c := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"quota_exceeded","message":"Daily limit of 5 chats exceeded","limit":5}`)) //nolint:errcheck
		})

		_, err := c.Chat(context.Background(), agent.ChatRequest{})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
		assert.Equal(t, "quota_exceeded", apiErr.Code)
		assert.Equal(t, "quota_exceeded: Daily limit of 5 chats exceeded", err.Error())
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := c.Usage(context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("bad body", func(t *testing.T) {
		c := newTestAPI(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{`)) //nolint:errcheck
		})

		_, err := c.Usage(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse response")
	})
}

func TestClient_Refresh(t *testing.T) {
	c := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Write([]byte(`{"token":"tok-2","expires_at":"2030-01-01T00:00:00Z"}`)) //nolint:errcheck
	})

	token, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, "tok-2", c.Tokens().Token())
}

func TestClient_NoTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"posts":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, NewMemoryTokenStore(""))

	feed, err := c.Feed(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
}
