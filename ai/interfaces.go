package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Similarity scores how alike two strings are.
// Implementations must be thread-safe for concurrent use.
type Similarity interface {
	// Similarity returns a normalized score in [0,1], where 1 means the
	// strings are interchangeable. The score need not be symmetric.
	Similarity(ctx context.Context, a, b string) (float32, error)
}

// Warmer is implemented by similarity backends that benefit from
// precomputing state for a known set of strings before serving.
type Warmer interface {
	// Warm prepares the backend for later comparisons against texts.
	Warm(ctx context.Context, texts []string) error
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service, or nil when the
	// provider has no embedding backend.
	Embedder() Embedder

	// Similarity returns the similarity capability.
	// The returned Similarity is safe for concurrent use.
	Similarity() Similarity

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
