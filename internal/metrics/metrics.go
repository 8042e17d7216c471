package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes recorded on fitcorr_pipeline_runs_total.
const (
	ResultOK           = "ok"
	ResultParseError   = "parse_error"
	ResultEmpty        = "empty"
	ResultInsufficient = "insufficient"
	ResultError        = "error"
)

// Metrics groups the pipeline's Prometheus collectors.
type Metrics struct {
	Runs     *prometheus.CounterVec
	Cache    *prometheus.CounterVec
	Duration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fitcorr_pipeline_runs_total",
			Help: "Analysis pipeline runs by result.",
		}, []string{"result"}),
		Cache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fitcorr_cache_requests_total",
			Help: "Memo cache lookups by stage and outcome.",
		}, []string{"stage", "outcome"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fitcorr_pipeline_duration_seconds",
			Help:    "Wall time of analysis pipeline runs.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
}

// CacheRequest records one memo lookup.
func (m *Metrics) CacheRequest(stage string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.Cache.WithLabelValues(stage, outcome).Inc()
}

// ObserveRun records a finished pipeline run.
func (m *Metrics) ObserveRun(result string, d time.Duration) {
	m.Runs.WithLabelValues(result).Inc()
	m.Duration.Observe(d.Seconds())
}
