package llm

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("llm: provider not configured")

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// everything the AI endpoints need from the gateway
type LLM interface {
	TextGenerator
	Embedder
	ImageGenerator
}

// generates a reply from a system prompt and conversation
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextGenerationRequest) (*TextGenerationResponse, error)
}

// generates embeddings from text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// renders an image for a prompt and returns its URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TextGenerationRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
}

type TextGenerationResponse struct {
	Text  string
	Usage Usage
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// holds configuration for LLM initialization
type Config struct {
	GeneratorProvider    Provider
	GeneratorAPIKey      string
	GeneratorModel       string
	GeneratorMaxTokens   int
	GeneratorTemperature float32

	EmbedderAPIKey string
	EmbedderModel  string // e.g., "text-embedding-3-small"

	ImageAPIKey string
	ImageModel  string // e.g., "dall-e-3"
}
