package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/optimistic"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/conversations"
)

func New(endpoint string, tokens TokenStore) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: chatRequestTimeout,
		},
		tokens: tokens,
	}
}

func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// returns one page of the community feed with the viewer's liked flags
func (c *Client) Feed(ctx context.Context, limit, offset int) (*FeedResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out FeedResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/community/feed?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// performs the authoritative like toggle; satisfies optimistic.Toggler
func (c *Client) ToggleLike(ctx context.Context, postID string) (*optimistic.Result, error) {
	var out optimistic.Result
	if err := c.do(ctx, http.MethodPost, "/api/v1/community/posts/"+url.PathEscape(postID)+"/like", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Characters(ctx context.Context, limit int) (*CharactersResponse, error) {
	var out CharactersResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/characters?limit="+strconv.Itoa(limit), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) CreateConversation(ctx context.Context, req conversations.CreateConversationRequest) (*conversations.Conversation, error) {
	var out conversations.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/v1/conversations", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Chat(ctx context.Context, req agent.ChatRequest) (*agent.ChatResponse, error) {
	var out agent.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/ai/chat", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Usage(ctx context.Context) (*quota.Snapshot, error) {
	var out quota.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/usage", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// exchanges the current token for a fresh one and stores it
func (c *Client) Refresh(ctx context.Context) (string, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", nil, &out); err != nil {
		return "", err
	}

	if out.Token == "" {
		return "", fmt.Errorf("refresh returned no token")
	}

	c.tokens.SetToken(out.Token)

	return out.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}

		var errResp errorResponse
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		}

		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
