package pipeline

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for pipeline runs.
type Metrics struct {
	SessionsSelected  prometheus.Counter
	SessionsMalformed prometheus.Counter
	PatternsTotal     *prometheus.CounterVec
	SuggestionsTotal  *prometheus.CounterVec
	RunDuration       prometheus.Histogram
}

// NewMetrics registers the pipeline metrics once and returns the
// shared instance, so repeated pipeline construction cannot trigger a
// duplicate registration panic.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			SessionsSelected: promauto.NewCounter(prometheus.CounterOpts{
				Name: "habitd_sessions_selected_total",
				Help: "Sessions that fit the collection budget",
			}),
			SessionsMalformed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "habitd_sessions_malformed_total",
				Help: "Sessions skipped as malformed",
			}),
			PatternsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "habitd_patterns_total",
				Help: "Patterns mined per family",
			}, []string{"family"}),
			SuggestionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "habitd_suggestions_total",
				Help: "Suggestions produced per kind and priority",
			}, []string{"kind", "priority"}),
			RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "habitd_run_duration_seconds",
				Help:    "Wall time of a full pipeline run",
				Buckets: prometheus.DefBuckets,
			}),
		}
	})
	return globalMetrics
}
