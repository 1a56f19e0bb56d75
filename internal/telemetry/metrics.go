// Package telemetry records run metrics and exports them in the Prometheus
// textfile format for node_exporter's textfile collector.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ppiankov/appscope/internal/model"
)

const namespace = "appscope"

// Page fetch outcomes
const (
	PageOK    = "ok"
	PageEmpty = "empty"
	PageError = "error"
	PageCache = "cache"
)

// Metrics holds the run metrics. A nil *Metrics is valid and records nothing,
// so components can take one unconditionally.
type Metrics struct {
	registry *prometheus.Registry

	// Acquisition
	FeedPages     *prometheus.CounterVec
	FeedRetries   prometheus.Counter
	CacheLookups  *prometheus.CounterVec
	FetchDuration prometheus.Histogram

	// Analysis
	ReviewsAnalyzed  prometheus.Counter
	Findings         *prometheus.CounterVec
	BucketWarnings   prometheus.Counter
	AnalysisDuration prometheus.Histogram

	// Runs
	Runs *prometheus.CounterVec
}

// New registers every metric on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{registry: reg}

	m.FeedPages = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_pages_total",
		Help:      "Review feed pages requested, by outcome (ok, empty, error, cache)",
	}, []string{"outcome"})

	m.FeedRetries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_retries_total",
		Help:      "Feed requests retried after a transient failure",
	})

	m.CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Feed cache lookups, by result (hit, miss)",
	}, []string{"result"})

	m.FetchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time to acquire one app's review corpus",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	m.ReviewsAnalyzed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_analyzed_total",
		Help:      "Reviews passed to the analysis engine",
	})

	m.Findings = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "findings_total",
		Help:      "Buckets emitted, by analyzer",
	}, []string{"analyzer"})

	m.BucketWarnings = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bucket_warnings_total",
		Help:      "Analysis buckets skipped after a failure",
	})

	m.AnalysisDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Time to run every analyzer over one corpus",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	m.Runs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "App analyses, by status (ok, error)",
	}, []string{"status"})

	return m
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// PageFetched counts one feed page by outcome
func (m *Metrics) PageFetched(outcome string) {
	if m == nil {
		return
	}
	m.FeedPages.WithLabelValues(outcome).Inc()
}

// Retried counts one retried feed request
func (m *Metrics) Retried() {
	if m == nil {
		return
	}
	m.FeedRetries.Inc()
}

// CacheLookup counts a cache hit or miss
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveFetch records the time spent acquiring a corpus
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// ObserveAnalysis records the size of a corpus and what the engine found in it
func (m *Metrics) ObserveAnalysis(reviews int, a *model.Analysis, d time.Duration) {
	if m == nil || a == nil {
		return
	}
	m.ReviewsAnalyzed.Add(float64(reviews))
	m.Findings.WithLabelValues("complaints").Add(float64(len(a.Complaints)))
	m.Findings.WithLabelValues("praise").Add(float64(len(a.Praise)))
	m.Findings.WithLabelValues("forces").Add(float64(len(a.Forces)))
	m.Findings.WithLabelValues("jtbd").Add(float64(len(a.JTBD)))
	m.Findings.WithLabelValues("pains").Add(float64(len(a.Outcomes.Pains)))
	m.Findings.WithLabelValues("wins").Add(float64(len(a.Outcomes.Wins)))
	m.BucketWarnings.Add(float64(len(a.Warnings)))
	m.AnalysisDuration.Observe(d.Seconds())
}

// RunFinished counts a completed app analysis
func (m *Metrics) RunFinished(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Runs.WithLabelValues(status).Inc()
}

// WriteTextfile writes every metric to path in the textfile exposition
// format. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
