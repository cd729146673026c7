package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AppVersion      = "1.0.0"
	FallbackModelID = "us.anthropic.claude-sonnet-4-5-20250929-v1:0"
)

const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
	ProviderFake    = "fake"
)

type Config struct {
	// Server
	Host string
	Port string
	Env  string

	AppVersion string

	// Model
	ModelProvider       string
	DefaultModelID      string
	ReportedModelID     string
	SystemPrompt        string
	ModelConcurrentReqs int

	// AWS Bedrock
	AWSRegion string

	// Gemini AI
	GeminiAPIKey string

	// Fake provider
	FakeScript string

	// Rate limiting
	RateLimitPerMin int
	RedisURL        string

	// Logging
	LogLevel  string
	LogFormat string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	defaultModel := getEnvOrDefault("DEFAULT_MODEL_ID", FallbackModelID)

	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8000"),
		Env:                 getEnvOrDefault("ENV", "development"),
		AppVersion:          AppVersion,
		ModelProvider:       strings.ToLower(getEnvOrDefault("MODEL_PROVIDER", ProviderBedrock)),
		DefaultModelID:      defaultModel,
		ReportedModelID:     getEnvOrDefault("MODEL_ID", defaultModel),
		SystemPrompt:        os.Getenv("SYSTEM_PROMPT"),
		ModelConcurrentReqs: getEnvAsIntOrDefault("MODEL_CONCURRENT_REQUESTS", 0),
		AWSRegion:           os.Getenv("AWS_REGION"),
		FakeScript:          os.Getenv("FAKE_SCRIPT"),
		RateLimitPerMin:     getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 0),
		RedisURL:            os.Getenv("REDIS_URL"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
		FrontendURL:         getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	if cfg.ModelProvider == ProviderGemini {
		cfg.GeminiAPIKey = mustGetEnv("GEMINI_API_KEY")
	}

	return cfg
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
