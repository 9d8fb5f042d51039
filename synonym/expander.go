package synonym

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/poiesic/labelmap/ai"
)

const (
	// DefaultThreshold is the minimum key similarity that pulls in a cluster.
	DefaultThreshold = 0.8
	// DefaultCacheSize bounds the number of memoised expansions.
	DefaultCacheSize = 512
)

// Option configures an Expander.
type Option func(*Expander) error

// WithTable replaces the default synonym table.
func WithTable(t Table) Option {
	return func(e *Expander) error {
		if err := t.Validate(); err != nil {
			return err
		}
		e.table = t
		return nil
	}
}

// WithThreshold sets the key similarity threshold.
func WithThreshold(threshold float32) Option {
	return func(e *Expander) error {
		if threshold < 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		e.threshold = threshold
		return nil
	}
}

// WithCacheSize sets the expansion cache size. Zero disables the cache.
func WithCacheSize(size int) Option {
	return func(e *Expander) error {
		e.cacheSize = size
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// Expander expands phrases with synonyms from a fixed table. The table is
// read-only after construction, so an Expander is safe for concurrent use.
//
// Every Expand call without a cached result scores the phrase against
// every key in the table, so the table must stay small.
type Expander struct {
	similarity ai.Similarity
	table      Table
	threshold  float32
	cacheSize  int
	logger     *slog.Logger

	lookup map[string]map[string]struct{}
	keys   []string
	cache  *lru.Cache[string, []string]
}

// NewExpander creates an expander that scores phrases with similarity.
func NewExpander(similarity ai.Similarity, opts ...Option) (*Expander, error) {
	if similarity == nil {
		return nil, ErrSimilarityRequired
	}

	e := &Expander{
		similarity: similarity,
		table:      DefaultTable(),
		threshold:  DefaultThreshold,
		cacheSize:  DefaultCacheSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "synonym-expander")

	e.lookup = e.table.lookup()
	e.keys = make([]string, 0, len(e.lookup))
	for k := range e.lookup {
		e.keys = append(e.keys, k)
	}
	sort.Strings(e.keys)

	if e.cacheSize > 0 {
		cache, err := lru.New[string, []string](e.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create expansion cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Keys returns the lookup keys in sorted order.
func (e *Expander) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Synonyms returns the cluster reachable from term, sorted. It does no
// similarity scoring.
func (e *Expander) Synonyms(term string) []string {
	return sortedSet(e.lookup[normalize(term)])
}

// Warm lets the similarity backend precompute state for the table keys
// when it supports that.
func (e *Expander) Warm(ctx context.Context) error {
	w, ok := e.similarity.(ai.Warmer)
	if !ok {
		return nil
	}
	return w.Warm(ctx, e.keys)
}

// Expand returns the union of the clusters of every key whose similarity to
// phrase is at least the threshold. The result is sorted and may be empty.
// A similarity failure for one key is logged and that key is skipped.
func (e *Expander) Expand(ctx context.Context, phrase string) []string {
	phrase = normalize(phrase)
	if phrase == "" {
		return nil
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(phrase); ok {
			return append([]string(nil), cached...)
		}
	}

	found := make(map[string]struct{})
	for _, key := range e.keys {
		if ctx.Err() != nil {
			e.logger.Warn("expansion interrupted", "phrase", phrase, "err", ctx.Err())
			return sortedSet(found)
		}
		score, err := e.similarity.Similarity(ctx, phrase, key)
		if err != nil {
			e.logger.Warn("similarity failed", "phrase", phrase, "key", key, "err", err)
			continue
		}
		if score >= e.threshold {
			for s := range e.lookup[key] {
				found[s] = struct{}{}
			}
		}
	}

	out := sortedSet(found)
	if e.cache != nil {
		e.cache.Add(phrase, out)
	}
	e.logger.Debug("expanded phrase", "phrase", phrase, "terms", len(out))
	return append([]string(nil), out...)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// String renders the table size for logs.
func (e *Expander) String() string {
	return fmt.Sprintf("Expander{terms: %d, keys: %d, threshold: %.2f}",
		len(e.table), len(e.keys), e.threshold)
}
