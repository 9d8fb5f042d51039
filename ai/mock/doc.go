// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Similarity
// and ai.AIProvider for use in unit tests. The mocks allow tests to run
// without external AI service dependencies.
//
// # Usage in Tests
//
//	sim := mock.NewMockSimilarity().WithScore("allergy", "allergy", 1)
//	score, err := sim.Similarity(ctx, "allergy", "allergy")
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockSimilarity: 1 for case-insensitively equal strings, otherwise 0
//   - MockProvider: Aggregates the mock embedder and similarity
package mock
