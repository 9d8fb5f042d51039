package vectorize

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/poiesic/labelmap/core"
)

const (
	// DefaultMaxFeatures bounds the fitted vocabulary.
	DefaultMaxFeatures = 10000
	// DefaultMaxNGram is the longest n-gram counted as a feature.
	DefaultMaxNGram = 3
)

// Option configures a Catalog.
type Option func(*Catalog) error

// WithNGramRange sets the inclusive n-gram lengths used as features.
func WithNGramRange(minN, maxN int) Option {
	return func(c *Catalog) error {
		if minN < 1 || maxN < minN {
			return fmt.Errorf("%w: n-gram range %d..%d", ErrInvalidOption, minN, maxN)
		}
		c.analyzer.minN = minN
		c.analyzer.maxN = maxN
		return nil
	}
}

// WithMaxFeatures bounds the vocabulary to the n most frequent terms.
func WithMaxFeatures(n int) Option {
	return func(c *Catalog) error {
		if n < 1 {
			return fmt.Errorf("%w: max features %d", ErrInvalidOption, n)
		}
		c.maxFeatures = n
		return nil
	}
}

// WithStopWords toggles English stopword removal.
func WithStopWords(enabled bool) Option {
	return func(c *Catalog) error {
		c.analyzer.stopWords = enabled
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// Catalog is a TF-IDF space fitted over the descriptions of a fixed
// diagnosis catalog. It is immutable once built and safe for concurrent use.
type Catalog struct {
	analyzer    analyzer
	maxFeatures int
	logger      *slog.Logger

	entries []core.CatalogEntry
	vocab   map[string]int
	idf     []float64
	vectors []Vector
}

// NewCatalog validates entries and fits the vector space over their
// descriptions. Entries keep their input order.
func NewCatalog(entries []*core.CatalogEntry, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		analyzer:    analyzer{minN: 1, maxN: DefaultMaxNGram, stopWords: true},
		maxFeatures: DefaultMaxFeatures,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if err := core.ValidateCatalog(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInitialization, err)
	}

	c.entries = make([]core.CatalogEntry, len(entries))
	docs := make([][]string, len(entries))
	for i, e := range entries {
		c.entries[i] = *e
		docs[i] = c.analyzer.terms(e.Description)
	}

	c.fit(docs)
	if len(c.vocab) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrInitialization, ErrEmptyVocabulary)
	}

	c.vectors = make([]Vector, len(docs))
	for i, terms := range docs {
		c.vectors[i] = c.weigh(terms)
	}

	c.logger.Info("catalog vector space fitted",
		"entries", len(c.entries), "features", len(c.vocab))
	return c, nil
}

// fit builds the bounded vocabulary and smoothed idf weights.
func (c *Catalog) fit(docs [][]string) {
	total := make(map[string]int)
	df := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			total[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	terms := make([]string, 0, len(total))
	for t := range total {
		terms = append(terms, t)
	}
	if len(terms) > c.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:c.maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	c.vocab = make(map[string]int, len(terms))
	c.idf = make([]float64, len(terms))
	for i, t := range terms {
		c.vocab[t] = i
		c.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
}

// weigh converts analyzed terms into an L2 normalised tf-idf vector.
// Terms outside the vocabulary are dropped.
func (c *Catalog) weigh(terms []string) Vector {
	counts := make(map[int]float64)
	for _, t := range terms {
		if idx, ok := c.vocab[t]; ok {
			counts[idx]++
		}
	}

	v := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, counts[idx]*c.idf[idx])
	}
	return Normalize(v)
}

// Vectorize maps text into the fitted space. Unknown terms contribute
// nothing; text with no known terms yields a zero vector.
func (c *Catalog) Vectorize(text string) Vector {
	return c.weigh(c.analyzer.terms(text))
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entry returns the i-th catalog entry.
func (c *Catalog) Entry(i int) core.CatalogEntry {
	return c.entries[i]
}

// Vector returns the fitted vector of the i-th entry.
func (c *Catalog) Vector(i int) Vector {
	return c.vectors[i]
}

// Features returns the vocabulary size.
func (c *Catalog) Features() int {
	return len(c.vocab)
}

// Scores returns the cosine similarity of v against every entry, in
// catalog order.
func (c *Catalog) Scores(v Vector) []float64 {
	scores := make([]float64, len(c.vectors))
	for i, ev := range c.vectors {
		scores[i] = Cosine(v, ev)
	}
	return scores
}
