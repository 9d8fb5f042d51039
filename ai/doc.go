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

// Package ai provides the similarity capability used for synonym expansion.
//
// The package defines the Similarity, Embedder and AIProvider interfaces and
// an embedding-backed Similarity with an LRU vector cache. Callers depend on
// these abstractions; concrete backends live in sub-packages:
//
//   - ai/lexical: fuzzy token overlap, no network access
//   - ai/openai: cosine over embeddings from OpenAI-compatible APIs
//   - ai/mock: test doubles
//
// Config selects the backend. The lexical backend is the default because it
// needs no running services.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithBackend(ai.BackendEmbedding))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	score, err := provider.Similarity().Similarity(ctx, "high blood pressure", "hypertension")
package ai
