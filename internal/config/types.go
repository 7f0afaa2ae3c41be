package config

import "time"

type Config struct {
	DatabaseURL   string
	RedisURL      string
	JWTSecret     string
	SessionSecret string
	BaseURL       string
	Port          string
	Environment   string

	// rate limit in ulule format, e.g. "120-M"
	RateLimit   string
	CORSOrigins []string

	Quota QuotaConfig
	LLM   LLMConfig
}

// daily AI allowance for non-premium users
type QuotaConfig struct {
	DailyLimit int
	Window     time.Duration
}

type LLMConfig struct {
	AnthropicKey      string
	OpenAIKey         string
	GeneratorProvider string
	GeneratorModel    string
	EmbedderModel     string
	ImageModel        string
}

// settings for the terminal client
type ClientConfig struct {
	Endpoint         string
	Token            string
	Reconcile        bool
	SerializeLikes   bool
	RefreshInterval  time.Duration
	DisableRefresher bool
}

// migrate subcommand options
type Flags struct {
	Down   bool
	DryRun bool
}

// embeddings command options
type EmbedFlags struct {
	BatchSize int
}
