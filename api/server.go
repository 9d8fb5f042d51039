package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/extract"
	"github.com/poiesic/labelmap/match"
)

// DefaultMaxBodySize bounds documents posted to /extract.
const DefaultMaxBodySize = 16 << 20

// Service is what the HTTP surface needs from the mapping service.
type Service interface {
	Ready() bool
	MapDrug(ctx context.Context, drug string) (*core.LabelMapping, error)
	ListLabels(ctx context.Context, offset, limit int) ([]*core.LabelMapping, error)
	SearchLabels(ctx context.Context, name string) ([]core.SPLSummary, error)
	MatchWithMonitor(ctx context.Context, text string, threshold float64, maxMatches int, monitor match.MatchMonitor) ([]core.MatchResult, error)
}

// Server is the HTTP front end.
type Server struct {
	svc         Service
	extractor   *extract.Extractor
	metrics     *Metrics
	maxBodySize int64
	logger      *slog.Logger
	router      *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithMetrics shares an existing metrics registry.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithExtractor sets the extractor used by /extract.
func WithExtractor(e *extract.Extractor) Option {
	return func(s *Server) {
		s.extractor = e
	}
}

// WithMaxBodySize bounds posted documents.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// NewServer creates a server and registers its routes.
func NewServer(svc Service, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, ErrServiceRequired
	}

	s := &Server{
		svc:         svc,
		maxBodySize: DefaultMaxBodySize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With("component", "api")
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.extractor == nil {
		s.extractor = extract.NewExtractor(extract.WithLogger(s.logger))
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery(), requestLogger(s.logger, s.metrics))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/readyz", s.readiness)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := s.router.Group("/api/v1", requireReady(s.svc.Ready))
	v1.GET("/drugs", s.listDrugs)
	v1.GET("/drugs/search/:name", s.searchDrug)
	v1.GET("/drugs/:name/indications", s.drugIndications)
	v1.POST("/extract", s.extract)
	v1.POST("/match", s.match)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
