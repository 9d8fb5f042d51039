package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/dailymed"
	"github.com/poiesic/labelmap/extract"
	"github.com/poiesic/labelmap/match"
	"github.com/poiesic/labelmap/storage"
)

// LabelSource fetches label documents. dailymed.Client implements it.
type LabelSource interface {
	DrugNames(ctx context.Context, page int) (*dailymed.DrugNamesPage, error)
	LatestSPL(ctx context.Context, name string) (*core.SPLSummary, error)
	SPLDocument(ctx context.Context, setID string) ([]byte, error)
	LabelHTML(ctx context.Context, setID string) ([]byte, error)
}

// Mapper maps indication text to ranked catalog entries. match.Engine
// implements it.
type Mapper interface {
	MapIndication(ctx context.Context, text string) (*core.IndicationMapping, error)
}

var (
	_ LabelSource = (*dailymed.Client)(nil)
	_ Mapper      = (*match.Engine)(nil)
)

// Result is the outcome of processing one drug.
type Result struct {
	Drug    string
	Mapping *core.LabelMapping
	Err     error
}

// Pipeline turns drug names into cached label mappings: fetch the latest
// label, extract its sections, map the indications, and store the result.
type Pipeline struct {
	labels       storage.LabelRepository
	source       LabelSource
	mapper       Mapper
	extractor    *extract.Extractor
	pool         *ants.Pool
	htmlFallback bool
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for bulk processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithExtractor replaces the default section extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) error {
		if e != nil {
			p.extractor = e
		}
		return nil
	}
}

// WithHTMLFallback controls whether the rendered label page is tried
// when the XML has no indications. Enabled by default.
func WithHTMLFallback(enabled bool) Option {
	return func(p *Pipeline) error {
		p.htmlFallback = enabled
		return nil
	}
}

// NewPipeline creates a new mapping pipeline.
func NewPipeline(labels storage.LabelRepository, source LabelSource, mapper Mapper, opts ...Option) (*Pipeline, error) {
	if labels == nil {
		return nil, ErrLabelRepositoryRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}
	if mapper == nil {
		return nil, ErrMapperRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		labels:       labels,
		source:       source,
		mapper:       mapper,
		pool:         pool,
		htmlFallback: true,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "pipeline")
	if p.extractor == nil {
		p.extractor = extract.NewExtractor(extract.WithLogger(p.logger))
	}
	return p, nil
}

// Process returns the mapping for one drug, from the cache when a live
// entry exists. Otherwise the latest label is fetched, extracted, mapped
// and cached. A label without indications is not cached.
func (p *Pipeline) Process(ctx context.Context, drug string) (*core.LabelMapping, error) {
	drug = strings.TrimSpace(drug)
	if drug == "" {
		return nil, core.ErrEmptyDrugName
	}

	cached, err := p.labels.GetLabel(ctx, drug)
	if err == nil {
		p.logger.Debug("label cache hit", "drug", drug)
		return cached, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		p.logger.Warn("label cache read failed", "drug", drug, "err", err)
	}

	spl, err := p.source.LatestSPL(ctx, drug)
	if err != nil {
		return nil, p.sourceError(drug, err)
	}

	doc, err := p.source.SPLDocument(ctx, spl.SetID)
	if err != nil {
		return nil, p.sourceError(drug, err)
	}

	indications := p.extractor.Indications(doc)
	directions := p.extractor.Directions(doc)

	if indications.Empty() && p.htmlFallback {
		indications, directions = p.fromHTML(ctx, spl.SetID, directions)
	}
	if indications.Empty() {
		return nil, fmt.Errorf("%w: %s (set %s)", ErrNoIndications, drug, spl.SetID)
	}

	text := strings.Join(indications, " ")
	mapping, err := p.mapper.MapIndication(ctx, text)
	if err != nil && !errors.Is(err, match.ErrEmptyQuery) {
		return nil, fmt.Errorf("failed to map indications for %s: %w", drug, err)
	}

	label := &core.LabelMapping{
		Drug:        drug,
		SetID:       spl.SetID,
		Title:       spl.Title,
		Indications: indications,
		Directions:  directions,
		Mapping:     mapping,
	}
	if err := p.labels.SaveLabel(ctx, label); err != nil {
		p.logger.Warn("label cache write failed", "drug", drug, "err", err)
	}

	p.logger.Info("mapped label", "drug", drug, "set_id", spl.SetID,
		"fragments", len(indications), "mapped", mapping != nil)
	return label, nil
}

// fromHTML extracts sections from the rendered label page. XML directions
// are kept when present. Fetch failures are logged.
func (p *Pipeline) fromHTML(ctx context.Context, setID, directions string) (core.ExtractedText, string) {
	page, err := p.source.LabelHTML(ctx, setID)
	if err != nil {
		p.logger.Warn("label page fetch failed", "set_id", setID, "err", err)
		return nil, directions
	}

	indications := p.extractor.ExtractHTML(page, core.SectionIndications)
	if directions == "" {
		directions = p.extractor.ExtractHTML(page, core.SectionDirections).Joined()
	}
	p.logger.Debug("used label page", "set_id", setID, "fragments", len(indications))
	return indications, directions
}

func (p *Pipeline) sourceError(drug string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrLabelNotFound, drug, err)
	}
	return fmt.Errorf("failed to fetch label for %s: %w", drug, err)
}

// ProcessAll runs Process for every drug on the worker pool. Results are
// returned in input order. A failure for one drug does not stop the others.
func (p *Pipeline) ProcessAll(ctx context.Context, drugs []string) []Result {
	results := make([]Result, len(drugs))

	var wg sync.WaitGroup
	for i, drug := range drugs {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				results[i] = Result{Drug: drug, Err: err}
				return
			}
			label, err := p.Process(ctx, drug)
			results[i] = Result{Drug: drug, Mapping: label, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = Result{Drug: drug, Err: fmt.Errorf("failed to schedule %s: %w", drug, err)}
		}
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info("bulk mapping finished", "drugs", len(drugs), "failed", failed)
	return results
}

// ProcessPage maps every drug name on one page of the source listing.
func (p *Pipeline) ProcessPage(ctx context.Context, page int) ([]Result, error) {
	names, err := p.source.DrugNames(ctx, page)
	if err != nil {
		return nil, err
	}
	return p.ProcessAll(ctx, names.Names), nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
