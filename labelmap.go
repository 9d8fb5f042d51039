package labelmap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/labelmap/ai"
	"github.com/poiesic/labelmap/ai/lexical"
	"github.com/poiesic/labelmap/ai/openai"
	"github.com/poiesic/labelmap/catalog"
	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/dailymed"
	"github.com/poiesic/labelmap/extract"
	"github.com/poiesic/labelmap/match"
	"github.com/poiesic/labelmap/pipeline"
	"github.com/poiesic/labelmap/storage"
	"github.com/poiesic/labelmap/storage/badger"
	"github.com/poiesic/labelmap/synonym"
	"github.com/poiesic/labelmap/vectorize"
)

// LabelSource is the pipeline's label source plus label search.
// dailymed.Client implements it.
type LabelSource interface {
	pipeline.LabelSource
	SearchSPLs(ctx context.Context, name string) ([]core.SPLSummary, error)
}

var _ LabelSource = (*dailymed.Client)(nil)

// Option configures a Service.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	provider   ai.AIProvider
	source     LabelSource
	preprocess *match.Preprocessor
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAIProvider replaces the provider built from Config.AI.
func WithAIProvider(p ai.AIProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithLabelSource replaces the DailyMed client.
func WithLabelSource(s LabelSource) Option {
	return func(o *options) {
		o.source = s
	}
}

// WithPreprocessor replaces the engine's default lemmatizing preprocessor.
func WithPreprocessor(p *match.Preprocessor) Option {
	return func(o *options) {
		o.preprocess = p
	}
}

// Service wires storage, label fetching, extraction and matching together.
//
// The match engine is built by Start, exactly once per Service. Until
// Start succeeds, matching calls return ErrNotReady.
type Service struct {
	config         *Config
	backend        *badger.Backend
	catalogRepo    *badger.CatalogRepository
	labelRepo      *badger.LabelRepository
	checkpointRepo *badger.CheckpointRepository
	provider       ai.AIProvider
	source         LabelSource
	expander       *synonym.Expander
	extractor      *extract.Extractor
	preprocess     *match.Preprocessor
	logger         *slog.Logger

	startOnce sync.Once
	started   chan struct{}
	startErr  error
	engine    *match.Engine
	pipeline  *pipeline.Pipeline
}

// Open validates config and opens the store and collaborators. The
// catalog is not read until Start.
func Open(config *Config, opts ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := badger.OpenBackendWithLogger(config.DBPath, config.InMemory, logger)
	if err != nil {
		return nil, err
	}

	catalogRepo, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	labelRepo, err := badger.NewLabelRepository(backend, config.LabelTTL)
	if err != nil {
		catalogRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = newProvider(config.AI)
		if err != nil {
			labelRepo.Close()
			catalogRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	s := &Service{
		config:         config,
		backend:        backend,
		catalogRepo:    catalogRepo,
		labelRepo:      labelRepo,
		checkpointRepo: badger.NewCheckpointRepository(backend),
		provider:       provider,
		source:         o.source,
		preprocess:     o.preprocess,
		logger:         logger.With("component", "service"),
		started:        make(chan struct{}),
	}

	if err := s.openCollaborators(logger); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func newProvider(cfg *ai.Config) (ai.AIProvider, error) {
	if cfg.Backend == ai.BackendEmbedding {
		return openai.NewProvider(cfg)
	}
	return lexical.NewProvider(), nil
}

func (s *Service) openCollaborators(logger *slog.Logger) error {
	synOpts := []synonym.Option{
		synonym.WithThreshold(s.config.SynonymThreshold),
		synonym.WithLogger(logger),
	}
	if s.config.SynonymFile != "" {
		table, err := synonym.LoadTable(s.config.SynonymFile)
		if err != nil {
			return err
		}
		synOpts = append(synOpts, synonym.WithTable(table))
	}

	expander, err := synonym.NewExpander(s.provider.Similarity(), synOpts...)
	if err != nil {
		return err
	}
	s.expander = expander

	if s.source == nil {
		dm := s.config.dailyMedConfig()
		dm.Logger = logger
		client, err := dailymed.NewClient(dm)
		if err != nil {
			return err
		}
		s.source = client
	}

	s.extractor = extract.NewExtractor(extract.WithLogger(logger))
	return nil
}

// Close releases the worker pool, the provider and the store.
func (s *Service) Close() error {
	if s.pipeline != nil {
		s.pipeline.Release()
	}

	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
		}
	}

	if err := s.labelRepo.Close(); err != nil {
		s.logger.Error("error closing label repository", "err", err)
		return err
	}
	if err := s.catalogRepo.Close(); err != nil {
		s.logger.Error("error closing catalog repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Start reads the catalog, fits the vector space, warms the similarity
// backend and builds the engine and pipeline. Only the first call does
// the work; every call returns its result. Failures wrap
// core.ErrInitialization.
func (s *Service) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		defer close(s.started)
		s.startErr = s.start(ctx)
		if s.startErr != nil {
			s.logger.Error("initialization failed", "err", s.startErr)
			return
		}
		s.logger.Info("service ready")
	})
	return s.startErr
}

func (s *Service) start(ctx context.Context) error {
	space, err := s.fitCatalog(ctx)
	if err != nil {
		return err
	}

	if err := s.expander.Warm(ctx); err != nil {
		return fmt.Errorf("%w: failed to warm similarity backend: %w", core.ErrInitialization, err)
	}

	engineOpts := []match.Option{match.WithLogger(s.logger)}
	if s.preprocess != nil {
		engineOpts = append(engineOpts, match.WithPreprocessor(s.preprocess))
	}
	engine, err := match.NewEngine(space, s.expander, engineOpts...)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(s.labelRepo, s.source, engine,
		pipeline.WithPoolSize(s.config.PoolSize),
		pipeline.WithLogger(s.logger),
		pipeline.WithExtractor(s.extractor))
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInitialization, err)
	}

	s.engine = engine
	s.pipeline = p
	return nil
}

func (s *Service) fitCatalog(ctx context.Context) (*vectorize.Catalog, error) {
	entries, err := s.catalogRepo.AllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read catalog: %w", core.ErrInitialization, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %w", core.ErrInitialization, core.ErrEmptyCatalog)
	}

	space, err := vectorize.NewCatalog(entries, vectorize.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInitialization, err)
	}
	return space, nil
}

// Ready reports whether Start has completed successfully.
func (s *Service) Ready() bool {
	select {
	case <-s.started:
		return s.startErr == nil
	default:
		return false
	}
}

// WaitReady blocks until Start completes or ctx is done. It returns the
// initialization error, if any.
func (s *Service) WaitReady(ctx context.Context) error {
	select {
	case <-s.started:
		return s.startErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload re-reads the catalog store and swaps the engine's vector space.
// In-flight matches finish against the old space.
func (s *Service) Reload(ctx context.Context) error {
	engine, err := s.readyEngine()
	if err != nil {
		return err
	}
	space, err := s.fitCatalog(ctx)
	if err != nil {
		return err
	}
	return engine.Reload(space)
}

func (s *Service) readyEngine() (*match.Engine, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	return s.engine, nil
}

// LoadCatalog loads a catalog CSV into the store. Progress is written to
// progress when it is not nil. Call Reload afterwards to use the new
// catalog in a started service.
func (s *Service) LoadCatalog(ctx context.Context, path string, force bool, progress io.Writer) (*core.Checkpoint, error) {
	cfg := catalog.DefaultConfig()
	cfg.Force = force
	cfg.Logger = s.logger

	loader, err := catalog.NewLoader(s.catalogRepo, s.checkpointRepo, cfg, progress)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, path)
}

// LoadCatalogReader is LoadCatalog over an already open CSV stream.
func (s *Service) LoadCatalogReader(ctx context.Context, r io.Reader, source string, force bool) (*core.Checkpoint, error) {
	cfg := catalog.DefaultConfig()
	cfg.Force = force
	cfg.Logger = s.logger

	loader, err := catalog.NewLoader(s.catalogRepo, s.checkpointRepo, cfg, nil)
	if err != nil {
		return nil, err
	}
	return loader.LoadReader(ctx, r, source)
}

// Match ranks catalog entries against text.
func (s *Service) Match(ctx context.Context, text string, threshold float64, maxMatches int) ([]core.MatchResult, error) {
	return s.MatchWithMonitor(ctx, text, threshold, maxMatches, nil)
}

// MatchWithMonitor is Match with stage callbacks.
func (s *Service) MatchWithMonitor(ctx context.Context, text string, threshold float64, maxMatches int, monitor match.MatchMonitor) ([]core.MatchResult, error) {
	engine, err := s.readyEngine()
	if err != nil {
		return nil, err
	}
	return engine.MatchWithMonitor(ctx, text, threshold, maxMatches, monitor)
}

// BestMatch returns the single best catalog entry for text, or nil.
func (s *Service) BestMatch(ctx context.Context, text string) (*core.MatchResult, error) {
	engine, err := s.readyEngine()
	if err != nil {
		return nil, err
	}
	return engine.BestMatch(ctx, text)
}

// MapIndication maps indication text with the mapping defaults.
func (s *Service) MapIndication(ctx context.Context, text string) (*core.IndicationMapping, error) {
	engine, err := s.readyEngine()
	if err != nil {
		return nil, err
	}
	return engine.MapIndication(ctx, text)
}

// MapDrug returns the cached or freshly mapped label for a drug.
func (s *Service) MapDrug(ctx context.Context, drug string) (*core.LabelMapping, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	return s.pipeline.Process(ctx, drug)
}

// MapDrugs maps several drugs concurrently. Results keep input order.
func (s *Service) MapDrugs(ctx context.Context, drugs []string) ([]pipeline.Result, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	return s.pipeline.ProcessAll(ctx, drugs), nil
}

// MapPage maps every drug on one page of the DailyMed drug name listing.
func (s *Service) MapPage(ctx context.Context, page int) ([]pipeline.Result, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	return s.pipeline.ProcessPage(ctx, page)
}

// ListLabels returns cached label mappings ordered by drug name.
func (s *Service) ListLabels(ctx context.Context, offset, limit int) ([]*core.LabelMapping, error) {
	return s.labelRepo.ListLabels(ctx, offset, limit)
}

// SearchLabels lists the published labels for a drug name.
func (s *Service) SearchLabels(ctx context.Context, name string) ([]core.SPLSummary, error) {
	spls, err := s.source.SearchSPLs(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return spls, err
}

// Extractor returns the section extractor.
func (s *Service) Extractor() *extract.Extractor {
	return s.extractor
}

// LabelSource returns the label source.
func (s *Service) LabelSource() LabelSource {
	return s.source
}

// CatalogRepository returns the catalog store.
func (s *Service) CatalogRepository() storage.CatalogRepository {
	return s.catalogRepo
}

// LabelRepository returns the label cache.
func (s *Service) LabelRepository() storage.LabelRepository {
	return s.labelRepo
}

// CheckpointRepository returns the load checkpoint store.
func (s *Service) CheckpointRepository() storage.CheckpointRepository {
	return s.checkpointRepo
}
