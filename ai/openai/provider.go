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

package openai

import (
	"log/slog"

	"github.com/poiesic/labelmap/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible APIs.
// Similarity is cosine over cached embeddings.
type Provider struct {
	config     *ai.Config
	embedder   *Embedder
	similarity *ai.EmbeddingSimilarity
	logger     *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider creates a new OpenAI-compatible provider.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	similarity, err := ai.NewEmbeddingSimilarity(embedder, config.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:     config,
		embedder:   embedder,
		similarity: similarity,
		logger:     slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder implements ai.AIProvider.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Similarity implements ai.AIProvider.
func (p *Provider) Similarity() ai.Similarity {
	return p.similarity
}

// Close implements ai.AIProvider.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
