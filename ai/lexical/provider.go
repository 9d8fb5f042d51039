package lexical

import "github.com/poiesic/labelmap/ai"

// Provider implements ai.AIProvider with the lexical similarity and no embedder.
type Provider struct {
	similarity *Similarity
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider creates a lexical provider.
func NewProvider(opts ...Option) ai.AIProvider {
	return &Provider{similarity: New(opts...)}
}

// Embedder returns nil; the lexical backend has no embeddings.
func (p *Provider) Embedder() ai.Embedder {
	return nil
}

// Similarity implements ai.AIProvider.
func (p *Provider) Similarity() ai.Similarity {
	return p.similarity
}

// Close implements ai.AIProvider.
func (p *Provider) Close() error {
	return nil
}
