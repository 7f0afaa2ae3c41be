package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort       = "8080"
	defaultRateLimit  = "120-M"
	defaultDailyLimit = 5
	defaultWindowHrs  = 24
	defaultEndpoint   = "http://localhost:8080"
	defaultRefresh    = 5 * time.Minute
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	dailyLimit, err := intEnv("AI_DAILY_LIMIT", defaultDailyLimit)
	if err != nil {
		return nil, err
	}

	if dailyLimit < 0 {
		return nil, fmt.Errorf("AI_DAILY_LIMIT must not be negative")
	}

	windowHours, err := intEnv("AI_WINDOW_HOURS", defaultWindowHrs)
	if err != nil {
		return nil, err
	}

	if windowHours <= 0 {
		return nil, fmt.Errorf("AI_WINDOW_HOURS must be positive")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = jwtSecret
	}

	return &Config{
		DatabaseURL:   databaseURL,
		RedisURL:      os.Getenv("REDIS_URL"),
		JWTSecret:     jwtSecret,
		SessionSecret: sessionSecret,
		BaseURL:       stringEnv("BASE_URL", "http://localhost:"+stringEnv("PORT", defaultPort)),
		Port:          stringEnv("PORT", defaultPort),
		Environment:   stringEnv("ENVIRONMENT", "development"),
		RateLimit:     stringEnv("RATE_LIMIT", defaultRateLimit),
		CORSOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Quota: QuotaConfig{
			DailyLimit: dailyLimit,
			Window:     time.Duration(windowHours) * time.Hour,
		},
		LLM: LLMConfig{
			AnthropicKey:      os.Getenv("ANTHROPIC_API_KEY"),
			OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
			GeneratorProvider: stringEnv("GENERATOR_PROVIDER", "anthropic"),
			GeneratorModel:    os.Getenv("GENERATOR_MODEL"),
			EmbedderModel:     os.Getenv("EMBEDDER_MODEL"),
			ImageModel:        os.Getenv("IMAGE_MODEL"),
		},
	}, nil
}

// loads terminal client settings
func LoadClientConfig() ClientConfig {
	_ = godotenv.Load()

	endpoint := strings.TrimRight(stringEnv("TALESPIN_API_ENDPOINT", defaultEndpoint), "/")

	return ClientConfig{
		Endpoint:        endpoint,
		Token:           os.Getenv("TALESPIN_TOKEN"),
		Reconcile:       boolEnv("TALESPIN_RECONCILE"),
		SerializeLikes:  boolEnv("TALESPIN_SERIALIZE_LIKES"),
		RefreshInterval: defaultRefresh,
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return n, nil
}

func boolEnv(key string) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && b
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}

	var out []string

	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}

	return out
}
