package match

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/vectorize"
)

const (
	// DefaultProbeThreshold is the floor for BestMatch.
	DefaultProbeThreshold = 0.01
	// DefaultMappingThreshold is the floor for MapIndication.
	DefaultMappingThreshold = 0.5
	// DefaultMaxMappings bounds MapIndication results.
	DefaultMaxMappings = 10
)

// Expander supplies synonym terms for a preprocessed phrase.
type Expander interface {
	Expand(ctx context.Context, phrase string) []string
}

// Engine ranks catalog entries against indication text using TF-IDF
// cosine similarity over the text and its synonym expansion.
//
// The engine is safe for concurrent use. Reload swaps the catalog under
// an exclusive lock, so it never interleaves with a running match.
type Engine struct {
	mu       sync.RWMutex
	catalog  *vectorize.Catalog
	expander Expander

	preprocessor     *Preprocessor
	probeThreshold   float64
	mappingThreshold float64
	maxMappings      int
	logger           *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithPreprocessor replaces the default preprocessor, which lemmatizes
// with the English dictionary.
func WithPreprocessor(p *Preprocessor) Option {
	return func(e *Engine) error {
		e.preprocessor = p
		return nil
	}
}

// WithProbeThreshold sets the threshold used by BestMatch.
func WithProbeThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if err := validateQuery(threshold, 1); err != nil {
			return err
		}
		e.probeThreshold = threshold
		return nil
	}
}

// WithMappingThreshold sets the threshold used by MapIndication.
func WithMappingThreshold(threshold float64) Option {
	return func(e *Engine) error {
		if err := validateQuery(threshold, 1); err != nil {
			return err
		}
		e.mappingThreshold = threshold
		return nil
	}
}

// WithMaxMappings sets the result limit used by MapIndication.
func WithMaxMappings(n int) Option {
	return func(e *Engine) error {
		if err := validateQuery(0, n); err != nil {
			return err
		}
		e.maxMappings = n
		return nil
	}
}

// NewEngine creates an engine over a fitted catalog.
func NewEngine(catalog *vectorize.Catalog, expander Expander, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if expander == nil {
		return nil, ErrExpanderRequired
	}

	e := &Engine{
		catalog:          catalog,
		expander:         expander,
		probeThreshold:   DefaultProbeThreshold,
		mappingThreshold: DefaultMappingThreshold,
		maxMappings:      DefaultMaxMappings,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.preprocessor == nil {
		lemmatizer, err := EnglishLemmatizer()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInitialization, err)
		}
		e.preprocessor = NewPreprocessor(lemmatizer)
	}

	return e, nil
}

// Reload replaces the catalog vector space. It waits for in-flight
// matches to finish and blocks new ones until the swap is done.
func (e *Engine) Reload(catalog *vectorize.Catalog) error {
	if catalog == nil {
		return ErrCatalogRequired
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catalog = catalog
	e.logger.Info("catalog reloaded", "entries", catalog.Len(), "features", catalog.Features())
	return nil
}

// Catalog returns the current catalog vector space.
func (e *Engine) Catalog() *vectorize.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// Match returns up to maxMatches catalog entries scoring at least
// threshold against text, best first. Equal scores keep catalog order.
// No qualifying entry yields an empty, non-nil slice.
func (e *Engine) Match(ctx context.Context, text string, threshold float64, maxMatches int) ([]core.MatchResult, error) {
	return e.MatchWithMonitor(ctx, text, threshold, maxMatches, nil)
}

// MatchWithMonitor is Match with callbacks at each stage of matching.
func (e *Engine) MatchWithMonitor(ctx context.Context, text string, threshold float64, maxMatches int, monitor MatchMonitor) ([]core.MatchResult, error) {
	if err := validateQuery(threshold, maxMatches); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	if monitor == nil {
		monitor = &noopMonitor{}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	monitor.Start(text)

	processed := e.preprocessor.Process(text)
	monitor.AfterPreprocess(processed)

	var terms []string
	if processed != "" {
		terms = e.expander.Expand(ctx, processed)
	}
	monitor.AfterExpansion(terms)

	combined := strings.TrimSpace(processed + " " + strings.Join(terms, " "))
	if combined == "" {
		e.logger.Debug("query empty after preprocessing", "text", text)
		return nil, ErrEmptyQuery
	}

	scores := e.catalog.Scores(e.catalog.Vectorize(combined))

	candidates := make([]int, 0)
	for i, s := range scores {
		if s >= threshold {
			candidates = append(candidates, i)
		}
	}
	monitor.AfterScoring(len(candidates))

	sort.SliceStable(candidates, func(a, b int) bool {
		return scores[candidates[a]] > scores[candidates[b]]
	})
	if len(candidates) > maxMatches {
		candidates = candidates[:maxMatches]
	}

	results := make([]core.MatchResult, 0, len(candidates))
	for _, idx := range candidates {
		entry := e.catalog.Entry(idx)
		results = append(results, core.MatchResult{
			Code:        entry.Code,
			Description: entry.Description,
			Category:    entry.Category,
			Score:       scores[idx],
		})
	}

	e.logger.Debug("matched indication", "processed", processed,
		"expansions", len(terms), "results", len(results))
	monitor.Finish(results)
	return results, nil
}

// BestMatch returns the single best entry above the probe threshold, or
// nil when none clears it.
func (e *Engine) BestMatch(ctx context.Context, text string) (*core.MatchResult, error) {
	results, err := e.Match(ctx, text, e.probeThreshold, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// MapIndication returns the ranked entries above the mapping threshold,
// or nil when none clears it.
func (e *Engine) MapIndication(ctx context.Context, text string) (*core.IndicationMapping, error) {
	return e.MapIndicationWithMonitor(ctx, text, nil)
}

// MapIndicationWithMonitor is MapIndication with match callbacks.
func (e *Engine) MapIndicationWithMonitor(ctx context.Context, text string, monitor MatchMonitor) (*core.IndicationMapping, error) {
	results, err := e.MatchWithMonitor(ctx, text, e.mappingThreshold, e.maxMappings, monitor)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &core.IndicationMapping{OriginalText: text, Matches: results}, nil
}

func validateQuery(threshold float64, maxMatches int) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidQuery, threshold)
	}
	if maxMatches < 1 {
		return fmt.Errorf("%w: max matches %d", ErrInvalidQuery, maxMatches)
	}
	return nil
}
