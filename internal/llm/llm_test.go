package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/talespin/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicGenerator_GenerateText(t *testing.T) {
	var got messagesRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"  Hello there  "}],"usage":{"input_tokens":12,"output_tokens":3}}`)) //nolint:errcheck
	}))
	defer srv.Close()

	gen := NewAnthropicGenerator(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})

	resp, err := gen.GenerateText(context.Background(), TextGenerationRequest{
		SystemPrompt: "You are Ada.",
		Messages:     []Message{{Role: "user", Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Text)
	assert.Equal(t, Usage{InputTokens: 12, OutputTokens: 3}, resp.Usage)
	assert.Equal(t, "You are Ada.", got.System)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, []Message{{Role: "user", Content: "hi"}}, got.Messages)
}

func TestAnthropicGenerator_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewAnthropicGenerator(AnthropicConfig{APIKey: "k", BaseURL: srv.URL}).
		GenerateText(context.Background(), TextGenerationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	_, err = NewAnthropicGenerator(AnthropicConfig{}).GenerateText(context.Background(), TextGenerationRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAIClient_Embeddings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		// out of order on purpose
		w.Write([]byte(`{"data":[{"index":1,"embedding":[0.2]},{"index":0,"embedding":[0.1]}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})

	out, err := emb.GenerateEmbeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1}, {0.2}}, out)

	_, err = emb.GenerateEmbeddings(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpenAIClient_ChatAndImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			var req chatRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "system", req.Messages[0].Role)

			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}],"usage":{"prompt_tokens":4,"completion_tokens":1}}`)) //nolint:errcheck
		case "/images/generations":
			w.Write([]byte(`{"data":[{"url":"https://img.example/1.png"}]}`)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	resp, err := gen.GenerateText(context.Background(), TextGenerationRequest{
		SystemPrompt: "sys",
		Messages:     []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 4, resp.Usage.InputTokens)

	url, err := NewOpenAIImageGenerator(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}).
		GenerateImage(context.Background(), "a castle")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/1.png", url)
}

func TestNewLLMWithConfig(t *testing.T) {
	l, err := NewLLMWithConfig(ConfigFrom(config.LLMConfig{AnthropicKey: "a", OpenAIKey: "o"}))
	require.NoError(t, err)
	assert.IsType(t, &AnthropicGenerator{}, l.TextGenerator)

	l, err = NewLLMWithConfig(ConfigFrom(config.LLMConfig{GeneratorProvider: "openai", OpenAIKey: "o"}))
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, l.TextGenerator)

	_, err = NewLLMWithConfig(&Config{GeneratorProvider: "mystery"})
	assert.Error(t, err)

	_, err = NewLLMWithConfig(nil)
	assert.Error(t, err)
}
