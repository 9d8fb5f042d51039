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

package mock

import "github.com/poiesic/labelmap/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder   *MockEmbedder
	similarity *MockSimilarity
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:   NewMockEmbedder(),
		similarity: NewMockSimilarity(),
	}
}

// NewMockProviderWithServices creates a provider around the given mocks.
func NewMockProviderWithServices(embedder *MockEmbedder, similarity *MockSimilarity) ai.AIProvider {
	return &MockProvider{
		embedder:   embedder,
		similarity: similarity,
	}
}

// Embedder implements ai.AIProvider.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Similarity implements ai.AIProvider.
func (p *MockProvider) Similarity() ai.Similarity {
	return p.similarity
}

// Close implements ai.AIProvider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the concrete embedder for assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockSimilarity returns the concrete similarity for assertions.
func (p *MockProvider) GetMockSimilarity() *MockSimilarity {
	return p.similarity
}
