package client

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"codeberg.org/talespin/server/api/rest/pagination"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/community"
)

const (
	defaultRequestTimeout = 30 * time.Second

	// chat waits on the model
	chatRequestTimeout = 2 * time.Minute
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoToken      = errors.New("not logged in")
)

// non-2xx response from the API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("request failed with status %d", e.Status)
}

// lets errors.Is(err, ErrUnauthorized) match any 401
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// holds the current bearer token
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.SetToken("")
}

// talks to the talespin REST API
type Client struct {
	endpoint   string
	httpClient *http.Client
	tokens     TokenStore
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type FeedResponse struct {
	Posts      []community.Post `json:"posts"`
	Pagination pagination.Meta  `json:"pagination"`
}

type CharactersResponse struct {
	Characters []characters.Character `json:"characters"`
	Pagination pagination.Meta        `json:"pagination"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
