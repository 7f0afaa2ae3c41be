package characters

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/talespin/server/internal/auth"
	"codeberg.org/talespin/server/talespin/characters"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownedID   = "11111111-1111-4111-8111-111111111111"
	privateID = "22222222-2222-4222-8222-222222222222"
	missingID = "33333333-3333-4333-8333-333333333333"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockRepo struct {
	items      map[string]*characters.Character
	lastFilter characters.ListFilter
	updated    bool
	deleted    bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[string]*characters.Character{
		ownedID:   {ID: ownedID, UserID: "owner", Name: "Ada", IsPublic: true},
		privateID: {ID: privateID, UserID: "owner", Name: "Secret", IsPublic: false},
	}}
}

func (m *mockRepo) List(_ context.Context, f characters.ListFilter) ([]characters.Character, error) {
	m.lastFilter = f

	out := []characters.Character{}
	for _, c := range m.items {
		if f.Public != nil && c.IsPublic != *f.Public {
			continue
		}

		out = append(out, *c)
	}

	return out, nil
}

func (m *mockRepo) Get(_ context.Context, id string) (*characters.Character, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, characters.ErrCharacterNotFound
	}

	return c, nil
}

func (m *mockRepo) Create(_ context.Context, userID string, req characters.CreateCharacterRequest) (*characters.Character, error) {
	return &characters.Character{ID: "44444444-4444-4444-8444-444444444444", UserID: userID, Name: req.Name}, nil
}

func (m *mockRepo) Update(_ context.Context, id string, req characters.UpdateCharacterRequest) (*characters.Character, error) {
	m.updated = true

	c := *m.items[id]
	if req.Name != nil {
		c.Name = *req.Name
	}

	return &c, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deleted = true
	delete(m.items, id)

	return nil
}

func (m *mockRepo) Similar(_ context.Context, id string, limit int) ([]characters.SimilarCharacter, error) {
	return []characters.SimilarCharacter{{Character: *m.items[ownedID], Similarity: 0.9}}, nil
}

type mockIndexer struct {
	ids []string
}

func (m *mockIndexer) Enqueue(_ context.Context, id string) error {
	m.ids = append(m.ids, id)
	return nil
}

func setup(t *testing.T) (*gin.Engine, *mockRepo, *mockIndexer, func(user string) string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "characters-test-secret")

	repo := newMockRepo()
	idx := &mockIndexer{}

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), repo, idx)

	bearer := func(user string) string {
		token, err := auth.GenerateJWT(user, user+"@example.com")
		require.NoError(t, err)

		return "Bearer " + token
	}

	return r, repo, idx, bearer
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

func TestListCharacters(t *testing.T) {
	r, repo, _, bearer := setup(t)

	t.Run("anonymous sees public only", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/characters?style=noir&limit=500", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp CharactersListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Characters, 1)
		assert.Equal(t, 100, resp.Pagination.Limit)
		assert.Equal(t, "noir", repo.lastFilter.Style)
		require.NotNil(t, repo.lastFilter.Public)
		assert.True(t, *repo.lastFilter.Public)
	})

	t.Run("mine lists own characters", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/v1/characters?mine=true", bearer("owner"), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "owner", repo.lastFilter.UserID)
		assert.Nil(t, repo.lastFilter.Public)
	})

	t.Run("mine requires auth", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/characters?mine=true", "", "").Code)
	})

	t.Run("bad boolean", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/characters?public=maybe", "", "").Code)
	})
}

func TestGetCharacter(t *testing.T) {
	r, _, _, bearer := setup(t)

	tests := []struct {
		name   string
		id     string
		bearer string
		status int
	}{
		{"public", ownedID, "", http.StatusOK},
		{"private to stranger", privateID, bearer("stranger"), http.StatusNotFound},
		{"private to owner", privateID, bearer("owner"), http.StatusOK},
		{"missing", missingID, "", http.StatusNotFound},
		{"not a uuid", "abc", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/v1/characters/"+tt.id, tt.bearer, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCreateCharacter(t *testing.T) {
	r, _, idx, bearer := setup(t)

	body := `{"name":"Ada","description":"inventor","personality":"curious","backstory":"London","style":"victorian"}`

	w := do(r, http.MethodPost, "/api/v1/characters", bearer("owner"), body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, idx.ids, 1)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/v1/characters", "", body).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/characters", bearer("owner"), `{"name":"Ada"}`).Code)
}

func TestUpdateCharacter(t *testing.T) {
	t.Run("owner renames and reindexes", func(t *testing.T) {
		r, repo, idx, bearer := setup(t)

		w := do(r, http.MethodPut, "/api/v1/characters/"+ownedID, bearer("owner"), `{"name":"Grace"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, repo.updated)
		assert.Equal(t, []string{ownedID}, idx.ids)
	})

	t.Run("visibility change skips reindex", func(t *testing.T) {
		r, _, idx, bearer := setup(t)

		w := do(r, http.MethodPut, "/api/v1/characters/"+ownedID, bearer("owner"), `{"is_public":false}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, idx.ids)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		r, repo, _, bearer := setup(t)

		w := do(r, http.MethodPut, "/api/v1/characters/"+ownedID, bearer("stranger"), `{"name":"Grace"}`)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, repo.updated)
	})

	t.Run("missing", func(t *testing.T) {
		r, _, _, bearer := setup(t)

		w := do(r, http.MethodPut, "/api/v1/characters/"+missingID, bearer("owner"), `{"name":"Grace"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteCharacter(t *testing.T) {
	r, repo, _, bearer := setup(t)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/characters/"+ownedID, bearer("stranger"), "").Code)
	assert.False(t, repo.deleted)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/api/v1/characters/"+ownedID, bearer("owner"), "").Code)
	assert.True(t, repo.deleted)
}

func TestSimilarCharacters(t *testing.T) {
	r, _, _, _ := setup(t)

	w := do(r, http.MethodGet, "/api/v1/characters/"+ownedID+"/similar", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SimilarResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Characters, 1)
	assert.InDelta(t, 0.9, resp.Characters[0].Similarity, 1e-9)
}
