package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrEmbedderRequired indicates an embedding similarity was built without an embedder.
var ErrEmbedderRequired = errors.New("embedder required")

// EmbeddingSimilarity scores strings by the cosine similarity of their
// embeddings. Embeddings are cached so that a fixed set of comparison keys
// is embedded once per process.
type EmbeddingSimilarity struct {
	embedder Embedder
	cache    *lru.Cache[string, []float32]
}

var _ Similarity = (*EmbeddingSimilarity)(nil)
var _ Warmer = (*EmbeddingSimilarity)(nil)

// NewEmbeddingSimilarity wraps embedder with an LRU cache of cacheSize vectors.
func NewEmbeddingSimilarity(embedder Embedder, cacheSize int) (*EmbeddingSimilarity, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &EmbeddingSimilarity{embedder: embedder, cache: cache}, nil
}

// Similarity implements Similarity. Negative cosines are clamped to 0.
func (s *EmbeddingSimilarity) Similarity(ctx context.Context, a, b string) (float32, error) {
	va, err := s.vector(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := s.vector(ctx, b)
	if err != nil {
		return 0, err
	}
	return clampUnit(CosineSimilarity(va, vb)), nil
}

// Warm embeds every uncached text in one batch.
func (s *EmbeddingSimilarity) Warm(ctx context.Context, texts []string) error {
	var missing []string
	for _, t := range texts {
		key := cacheKey(t)
		if _, ok := s.cache.Get(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, missing)
	if err != nil {
		return fmt.Errorf("failed to warm embeddings: %w", err)
	}
	if len(vectors) != len(missing) {
		return fmt.Errorf("failed to warm embeddings: got %d vectors for %d texts", len(vectors), len(missing))
	}
	for i, key := range missing {
		s.cache.Add(key, vectors[i])
	}
	return nil
}

func (s *EmbeddingSimilarity) vector(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}
	v, err := s.embedder.EmbedText(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %q: %w", key, err)
	}
	s.cache.Add(key, v)
	return v, nil
}

func cacheKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CosineSimilarity returns the cosine of the angle between two dense
// vectors, or 0 if they differ in length or either is zero.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
