package llm

import (
	"codeberg.org/talespin/server/internal/config"
)

const (
	defaultGeneratorMaxTokens = 1000
	defaultStoryMaxTokens     = 4096
)

// maps application settings onto LLM configuration
func ConfigFrom(cfg config.LLMConfig) *Config {
	provider := Provider(cfg.GeneratorProvider)
	if provider == "" {
		provider = ProviderAnthropic
	}

	// the generator key follows the chosen provider
	generatorKey := cfg.AnthropicKey
	if provider == ProviderOpenAI {
		generatorKey = cfg.OpenAIKey
	}

	return &Config{
		GeneratorProvider:    provider,
		GeneratorAPIKey:      generatorKey,
		GeneratorModel:       cfg.GeneratorModel,
		GeneratorMaxTokens:   defaultGeneratorMaxTokens,
		GeneratorTemperature: defaultTemperature,
		EmbedderAPIKey:       cfg.OpenAIKey,
		EmbedderModel:        cfg.EmbedderModel,
		ImageAPIKey:          cfg.OpenAIKey,
		ImageModel:           cfg.ImageModel,
	}
}

// token budget for long-form story generation
func StoryMaxTokens() int {
	return defaultStoryMaxTokens
}
