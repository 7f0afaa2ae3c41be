package llm

import (
	"fmt"
)

// combines a TextGenerator, Embedder, and ImageGenerator into a single LLM
type CompositeLLM struct {
	TextGenerator
	Embedder
	ImageGenerator
}

// creates a new LLM with explicit configuration
func NewLLMWithConfig(config *Config) (*CompositeLLM, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	// create generator based on provider (for chat and stories)
	var textGenerator TextGenerator

	switch config.GeneratorProvider {
	case ProviderAnthropic, "":
		textGenerator = NewAnthropicGenerator(AnthropicConfig{
			APIKey:      config.GeneratorAPIKey,
			Model:       config.GeneratorModel,
			MaxTokens:   config.GeneratorMaxTokens,
			Temperature: config.GeneratorTemperature,
		})
	case ProviderOpenAI:
		textGenerator = NewOpenAIGenerator(OpenAIConfig{
			APIKey:      config.GeneratorAPIKey,
			Model:       config.GeneratorModel,
			MaxTokens:   config.GeneratorMaxTokens,
			Temperature: config.GeneratorTemperature,
		})
	default:
		return nil, fmt.Errorf("unsupported generator provider: %s", config.GeneratorProvider)
	}

	return &CompositeLLM{
		TextGenerator: textGenerator,
		Embedder: NewOpenAIEmbedder(OpenAIConfig{
			APIKey: config.EmbedderAPIKey,
			Model:  config.EmbedderModel,
		}),
		ImageGenerator: NewOpenAIImageGenerator(OpenAIConfig{
			APIKey: config.ImageAPIKey,
			Model:  config.ImageModel,
		}),
	}, nil
}
