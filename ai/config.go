// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"strings"
)

// Similarity backends.
const (
	// BackendLexical scores strings by fuzzy token overlap, with no network calls.
	BackendLexical = "lexical"
	// BackendEmbedding scores strings by cosine similarity of their embeddings.
	BackendEmbedding = "embedding"
)

// Config holds configuration for the similarity capability and its providers.
type Config struct {
	// Backend selects the similarity implementation: "lexical" or "embedding".
	// Default: "lexical"
	Backend string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	EmbeddingModel string

	// CacheSize bounds the number of embedded strings kept in memory.
	// Default: 1024
	CacheSize int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the similarity backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithCacheSize sets the embedding cache size.
func WithCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// DefaultConfig returns a Config with sensible defaults. The lexical backend
// needs no running services; the embedding defaults target a local
// OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendLexical,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "nomic-embed-text",
		CacheSize:      1024,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendEmbedding),
//	    WithEmbeddingModel("text-embedding-3-small"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It lowercases the backend name and adds the /v1 suffix to the embedding
// host if missing, which is required by most OpenAI-compatible APIs.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendLexical:
	case BackendEmbedding:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	default:
		return errors.New("ai config: Backend must be lexical or embedding")
	}
	if c.CacheSize < 1 {
		return errors.New("ai config: CacheSize must be positive")
	}
	return nil
}
