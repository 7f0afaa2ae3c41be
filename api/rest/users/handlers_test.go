package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockRepo struct {
	user    *users.User
	err     error
	updated *users.UpdateProfileRequest
}

func (m *mockRepo) FindByID(_ context.Context, userID string) (*users.User, error) {
	if m.err != nil {
		return nil, m.err
	}

	u := *m.user
	u.ID = userID

	return &u, nil
}

func (m *mockRepo) UpdateProfile(_ context.Context, userID string, req users.UpdateProfileRequest) (*users.User, error) {
	m.updated = &req

	u := *m.user
	u.ID = userID
	if req.Name != nil {
		u.Name = *req.Name
	}

	return &u, nil
}

func setup(t *testing.T, repo UserRepository, usage UsageReader) (*gin.Engine, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "users-test-secret")

	token, err := auth.GenerateJWT("user-1", "a@example.com")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), repo, usage)

	return r, "Bearer " + token
}

func do(r *gin.Engine, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestGetProfile(t *testing.T) {
	repo := &mockRepo{user: &users.User{Name: "Ada", IsPremium: true}}
	r, bearer := setup(t, repo, quota.NewTracker(quota.NewMemoryStore(), quota.Config{}))

	w := do(r, http.MethodGet, "/api/v1/users/me", bearer, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.User.ID)
	assert.True(t, resp.User.IsPremium)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/users/me", "", "").Code)

	repo.err = users.ErrUserNotFound
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/users/me", bearer, "").Code)
}

func TestUpdateProfile(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"name only", `{"name":"Grace"}`, http.StatusOK},
		{"avatar only", `{"avatar_url":"https://example.com/a.png"}`, http.StatusOK},
		{"empty body", `{}`, http.StatusBadRequest},
		{"blank name", `{"name":""}`, http.StatusBadRequest},
		{"malformed", `{"name":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{user: &users.User{Name: "Ada"}}
			r, bearer := setup(t, repo, quota.NewTracker(quota.NewMemoryStore(), quota.Config{}))

			w := do(r, http.MethodPut, "/api/v1/users/me", bearer, tt.body)
			assert.Equal(t, tt.status, w.Code)

			if tt.status == http.StatusOK {
				assert.NotNil(t, repo.updated)
			} else {
				assert.Nil(t, repo.updated)
			}
		})
	}
}

func TestGetUsage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := quota.NewMemoryStore()
	tracker := quota.NewTracker(store, quota.Config{Now: func() time.Time { return now }})

	r, bearer := setup(t, &mockRepo{user: &users.User{}}, tracker)

	t.Run("fresh user has the full allowance", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/users/usage", bearer, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp UsageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "free", resp.Tier)
		assert.Equal(t, 5, resp.Limit)
		assert.Equal(t, 5, resp.Remaining)
	})

	t.Run("partially used", func(t *testing.T) {
		store.Put(quota.UsageRecord{UserID: "user-1", DailyAIConversationsUsed: 3, LastConversationReset: now.Add(-time.Hour)})

		w := do(r, http.MethodGet, "/api/v1/users/usage", bearer, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp UsageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Used)
		assert.Equal(t, 2, resp.Remaining)
		require.NotNil(t, resp.ResetsAt)
		assert.True(t, resp.ResetsAt.Equal(now.Add(23*time.Hour)))
	})

	t.Run("premium is unlimited", func(t *testing.T) {
		store.Put(quota.UsageRecord{UserID: "user-1", IsPremium: true, LastConversationReset: now})

		w := do(r, http.MethodGet, "/api/v1/users/usage", bearer, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp UsageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "premium", resp.Tier)
		assert.Equal(t, -1, resp.Remaining)
	})
}
