package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/praxia-labs/clausecheck/pkg/config"
)

// TestLoad_Defaults verifies that Load() returns sensible defaults
// when no environment variables are set.
func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env
	t.Setenv("EMBEDDING_ENDPOINT", "")
	t.Setenv("EMBEDDING_API_KEY", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("CACHE_DSN", "")
	t.Setenv("SIMILARITY_THRESHOLD", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := config.Load()

	assert.Contains(t, cfg.EmbeddingEndpoint, "localhost")
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 0.75, cfg.SimilarityThreshold)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Empty(t, cfg.EmbeddingAPIKey)
}

// TestLoad_Overrides verifies that environment variables correctly
// override default values.
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EMBEDDING_ENDPOINT", "https://api.example.com/v1/embeddings")
	t.Setenv("EMBEDDING_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_MODEL", "custom-embedder")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_DSN", "localhost:6379")
	t.Setenv("SIMILARITY_THRESHOLD", "0.8")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := config.Load()

	assert.Equal(t, "https://api.example.com/v1/embeddings", cfg.EmbeddingEndpoint)
	assert.Equal(t, "sk-test", cfg.EmbeddingAPIKey)
	assert.Equal(t, "custom-embedder", cfg.EmbeddingModel)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, "localhost:6379", cfg.CacheDSN)
	assert.Equal(t, 0.8, cfg.SimilarityThreshold)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

// TestLoad_InvalidThreshold verifies that malformed or out-of-range
// thresholds fall back to the default.
func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "nope")
	assert.Equal(t, 0.75, config.Load().SimilarityThreshold)

	t.Setenv("SIMILARITY_THRESHOLD", "1.5")
	assert.Equal(t, 0.75, config.Load().SimilarityThreshold)
}
