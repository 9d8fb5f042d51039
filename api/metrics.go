package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/match"
)

const namespace = "labelmap"

// Metrics holds the server's prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	matches        prometheus.Counter
	emptyResults   prometheus.Counter
	expansionTerms prometheus.Counter
	matchLatency   prometheus.Histogram
	requests       *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors, along with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Number of completed match calls",
		}),
		emptyResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_empty_results_total",
			Help:      "Number of match calls where no catalog entry cleared the threshold",
		}),
		expansionTerms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synonym_expansion_terms_total",
			Help:      "Number of synonym terms added to match queries",
		}),
		matchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent matching one indication text",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.matches,
		m.emptyResults,
		m.expansionTerms,
		m.matchLatency,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Monitor returns a MatchMonitor for a single match call.
func (m *Metrics) Monitor() match.MatchMonitor {
	return &matchMonitor{metrics: m}
}

// matchMonitor times one match and reports into the shared collectors.
type matchMonitor struct {
	metrics *Metrics
	start   time.Time
}

var _ match.MatchMonitor = (*matchMonitor)(nil)

func (mm *matchMonitor) Start(string) {
	mm.start = time.Now()
}

func (mm *matchMonitor) AfterPreprocess(string) {}

func (mm *matchMonitor) AfterExpansion(terms []string) {
	mm.metrics.expansionTerms.Add(float64(len(terms)))
}

func (mm *matchMonitor) AfterScoring(int) {}

func (mm *matchMonitor) Finish(results []core.MatchResult) {
	mm.metrics.matches.Inc()
	if len(results) == 0 {
		mm.metrics.emptyResults.Inc()
	}
	mm.metrics.matchLatency.Observe(time.Since(mm.start).Seconds())
}
