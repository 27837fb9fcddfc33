package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted for EMBEDDING_PROVIDER and CHAT_PROVIDER.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the application.
type Config struct {
	APIHost   string
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
	DBPath    string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	QdrantTimeout    time.Duration

	// EmbeddingDimension is used both for the collection width and the
	// requested embedding output size.
	EmbeddingDimension     int
	EmbeddingProvider      string
	EmbeddingModel         string
	EmbeddingBaseURL       string
	EmbeddingQueryTaskType string
	EmbeddingCacheSize     int
	EmbeddingCacheTTL      time.Duration
	EmbeddingRateLimit     float64

	GeminiAPIKey string
	ChatProvider string
	ChatModel    string
	LLMBaseURL   string
	LLMAPIKey    string
	MaxTokens    int
	Temperature  float32
	MaxRetries   int

	MaxChunkSize       int
	ChunkOverlap       int
	MarkdownSourcePath string

	CORSAllowedOrigins []string
	IngestSchedule     string
	IngestOnStartup    bool
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIHost:                getEnv("API_HOST", "0.0.0.0"),
		APIPort:                getEnv("API_PORT", "8000"),
		LogFormat:              strings.ToLower(getEnv("LOG_FORMAT", "text")),
		DBPath:                 getEnv("DB_PATH", "./data/bookrag.db"),
		QdrantURL:              getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:           getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:       getEnv("QDRANT_COLLECTION_NAME", "book_content"),
		EmbeddingProvider:      strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
		EmbeddingModel:         getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingBaseURL:       getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingQueryTaskType: getEnv("EMBEDDING_QUERY_TASK_TYPE", "RETRIEVAL_QUERY"),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		ChatProvider:           strings.ToLower(getEnv("CHAT_PROVIDER", ProviderGemini)),
		ChatModel:              getEnv("CHAT_MODEL", "gemini-1.5-flash"),
		LLMBaseURL:             getEnv("LLM_BASE_URL", "https://openrouter.ai/api"),
		LLMAPIKey:              getEnv("LLM_API_KEY", ""),
		MarkdownSourcePath:     getEnv("MARKDOWN_SOURCE_PATH", "./docs"),
		CORSAllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		IngestSchedule:         getEnv("INGEST_SCHEDULE", ""),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or text, got %q", cfg.LogFormat)
	}

	if cfg.QdrantTimeout, err = getDuration("QDRANT_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.EmbeddingCacheTTL, err = getDuration("EMBEDDING_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.EmbeddingDimension, err = getInt("EMBEDDING_DIMENSION", 768); err != nil {
		return nil, err
	}
	if cfg.EmbeddingDimension <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be greater than 0")
	}
	if cfg.EmbeddingCacheSize, err = getInt("EMBEDDING_CACHE_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.MaxTokens, err = getInt("MAX_TOKENS", 1000); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.MaxChunkSize, err = getInt("MAX_CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap, err = getInt("CHUNK_OVERLAP", 100); err != nil {
		return nil, err
	}
	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("MAX_CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be between 0 and MAX_CHUNK_SIZE-1")
	}

	temperature, err := strconv.ParseFloat(getEnv("TEMPERATURE", "0.1"), 32)
	if err != nil {
		return nil, fmt.Errorf("TEMPERATURE must be a valid number: %w", err)
	}
	cfg.Temperature = float32(temperature)

	if cfg.EmbeddingRateLimit, err = strconv.ParseFloat(getEnv("EMBEDDING_RATE_LIMIT", "0"), 64); err != nil {
		return nil, fmt.Errorf("EMBEDDING_RATE_LIMIT must be a valid number: %w", err)
	}

	if cfg.IngestOnStartup, err = strconv.ParseBool(getEnv("INGEST_ON_STARTUP", "false")); err != nil {
		return nil, fmt.Errorf("INGEST_ON_STARTUP must be a boolean: %w", err)
	}

	if err := validateProvider("EMBEDDING_PROVIDER", cfg.EmbeddingProvider); err != nil {
		return nil, err
	}
	if err := validateProvider("CHAT_PROVIDER", cfg.ChatProvider); err != nil {
		return nil, err
	}
	if (cfg.EmbeddingProvider == ProviderGemini || cfg.ChatProvider == ProviderGemini) && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when a gemini provider is selected")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the API server.
func (c *Config) Addr() string {
	return c.APIHost + ":" + c.APIPort
}

func validateProvider(key, value string) error {
	switch value {
	case ProviderGemini, ProviderOpenAI:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", key, ProviderGemini, ProviderOpenAI, value)
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	return level, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
