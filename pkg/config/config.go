package config

import (
	"os"
	"strconv"
)

// Config holds engine configuration.
type Config struct {
	EmbeddingEndpoint   string
	EmbeddingAPIKey     string
	EmbeddingModel      string
	CacheBackend        string // "memory" | "sqlite" | "redis"
	CacheDSN            string
	SimilarityThreshold float64
	LogLevel            string
}

// Load loads configuration from environment variables.
func Load() *Config {
	endpoint := os.Getenv("EMBEDDING_ENDPOINT")
	if endpoint == "" {
		// Default to a local OpenAI-compatible embedding server
		endpoint = "http://localhost:8081/v1/embeddings"
	}

	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		model = "text-embedding-3-small"
	}

	backend := os.Getenv("CACHE_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	threshold := 0.75
	if raw := os.Getenv("SIMILARITY_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			threshold = v
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	return &Config{
		EmbeddingEndpoint:   endpoint,
		EmbeddingAPIKey:     os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:      model,
		CacheBackend:        backend,
		CacheDSN:            os.Getenv("CACHE_DSN"),
		SimilarityThreshold: threshold,
		LogLevel:            logLevel,
	}
}
