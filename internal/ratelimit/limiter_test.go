package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/characters", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func do(r *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)

	return w
}

func TestLimiter_Memory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = "2-M"

	l, err := New(cfg, nil)
	require.NoError(t, err)

	r := newRouter(l.Middleware())

	w := do(r, "/api/v1/characters", "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do(r, "/api/v1/characters", "10.0.0.1").Code)

	w = do(r, "/api/v1/characters", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"too_many_requests"`)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, do(r, "/api/v1/characters", "10.0.0.2").Code)

	// exempt paths are never limited
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, "/health", "10.0.0.1").Code)
	}
}

func TestLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := DefaultConfig()
	cfg.Rate = "1-M"

	l, err := New(cfg, client)
	require.NoError(t, err)

	r := newRouter(l.Middleware())

	assert.Equal(t, http.StatusOK, do(r, "/api/v1/characters", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/api/v1/characters", "10.0.0.1").Code)

	// the counter lives in redis, so a second limiter sees it
	l2, err := New(cfg, client)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, do(newRouter(l2.Middleware()), "/api/v1/characters", "10.0.0.1").Code)
}

func TestLimiter_UserKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = "1-M"

	l, err := New(cfg, nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User"))
		c.Next()
	})
	r.Use(l.UserMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-User", user)
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("u1"))
	assert.Equal(t, http.StatusTooManyRequests, call("u1"))
	assert.Equal(t, http.StatusOK, call("u2"))
}

func TestNew_InvalidRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = "lots"

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestRetryAfter(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.Equal(t, int64(30), retryAfter(1030, now))
	assert.Equal(t, int64(0), retryAfter(900, now))
}

func TestIsExemptPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsExemptPath("/health"))
	assert.True(t, cfg.IsExemptPath("/api/v1/ws/feed"))
	assert.False(t, cfg.IsExemptPath("/healthcheck"))
}
