package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, BackendLexical, cfg.Backend)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 1024, cfg.CacheSize)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, BackendLexical, cfg.Backend)
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithBackend(BackendEmbedding),
			WithEmbeddingHost("http://embed:8080/v1"),
			WithEmbeddingModel("text-embedding-3-small"),
			WithCacheSize(16),
		)

		assert.Equal(t, BackendEmbedding, cfg.Backend)
		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, 16, cfg.CacheSize)
	})
}

func TestConfig_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"adds suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trims slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps suffix", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Backend: " Embedding ", EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, BackendEmbedding, cfg.Backend)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("lexical ignores embedding settings", func(t *testing.T) {
		cfg := NewConfig(WithEmbeddingHost(""), WithEmbeddingModel(""))
		require.NoError(t, cfg.Validate())
	})

	t.Run("embedding requires host", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendEmbedding), WithEmbeddingHost(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingHost is required")
	})

	t.Run("embedding requires model", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendEmbedding), WithEmbeddingModel(""))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EmbeddingModel is required")
	})

	t.Run("unknown backend", func(t *testing.T) {
		err := NewConfig(WithBackend("spacy")).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Backend")
	})

	t.Run("cache size", func(t *testing.T) {
		err := NewConfig(WithCacheSize(0)).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CacheSize")
	})
}
