package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/community"
	"codeberg.org/talespin/server/talespin/social"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		category string
	}{
		{"contention", quota.ErrContention, http.StatusConflict, CodeConflict, CategoryContention},
		{"wrapped contention", fmt.Errorf("reserve: %w", quota.ErrContention), http.StatusConflict, CodeConflict, CategoryContention},
		{"quota", &quota.ExceededError{Limit: 5}, http.StatusTooManyRequests, CodeQuotaExceeded, CategoryQuota},
		{"gateway", &agent.GatewayError{Op: "chat", Err: errors.New("overloaded")}, http.StatusBadGateway, CodeUpstreamFailure, CategoryUpstream},
		{"post", fmt.Errorf("get: %w", community.ErrPostNotFound), http.StatusNotFound, CodeNotFound, CategoryNotFound},
		{"user", users.ErrUserNotFound, http.StatusNotFound, CodeNotFound, CategoryNotFound},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, CodeNotFound, CategoryNotFound},
		{"not owner", agent.ErrNotOwner, http.StatusForbidden, CodeForbidden, CategoryAuth},
		{"self follow", social.ErrSelfFollow, http.StatusBadRequest, CodeBadRequest, CategoryValidation},
		{"unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict, CodeConflict, CategoryDatabase},
		{"other pg", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError, CodeServerError, CategoryDatabase},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, CodeServerError, CategoryTimeout},
		// text that used to match a keyword no longer changes the outcome
		{"plain text", errors.New("connection timeout: permission denied"), http.StatusInternalServerError, CodeServerError, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := classifyError(tt.err)
			assert.Equal(t, tt.status, info.status)
			assert.Equal(t, tt.code, info.code)
			assert.Equal(t, tt.category, Category(tt.err))
		})
	}
}

func TestClassifyError_Sanitized(t *testing.T) {
	err := &pgconn.PgError{Code: "42P01", Message: "relation \"users\" does not exist"}

	t.Setenv("ENVIRONMENT", "development")
	assert.Contains(t, classifyError(err).sanitized, "relation")

	t.Setenv("ENVIRONMENT", "production")
	assert.Equal(t, "database operation failed", classifyError(err).sanitized)
}

func respond(err error) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	Respond(c, "failed to chat", err)

	return w
}

func TestRespond(t *testing.T) {
	t.Run("contention is retryable", func(t *testing.T) {
		w := respond(quota.ErrContention)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CodeConflict, resp.Error)
		assert.Contains(t, resp.Message, "try again")
		assert.Empty(t, resp.Details)
	})

	t.Run("quota keeps its body", func(t *testing.T) {
		resetsAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		w := respond(fmt.Errorf("chat: %w", &quota.ExceededError{Limit: 5, ResetsAt: resetsAt}))
		require.Equal(t, http.StatusTooManyRequests, w.Code)

		var resp QuotaResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Limit)
		assert.Equal(t, "2026-01-02T03:04:05Z", resp.ResetsAt)
	})

	t.Run("server failure uses caller message", func(t *testing.T) {
		w := respond(errors.New("disk full"))
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CodeServerError, resp.Error)
		assert.Equal(t, "failed to chat", resp.Message)
	})
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("11111111-1111-4111-8111-111111111111"))
	assert.True(t, IsValidUUID("A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11"))

	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("{a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11}"))
	assert.False(t, IsValidUUID("urn:uuid:a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"))
	assert.False(t, IsValidUUID("a0eebc999c0b4ef8bb6d6bb9bd380a11"))
	assert.False(t, IsValidUUID("g0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"))
}

func TestValidatePathUUID(t *testing.T) {
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		id, ok := ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/11111111-1111-4111-8111-111111111111", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
