package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RunsCompleted   *prometheus.CounterVec
	SheetsProcessed prometheus.Counter
	EventsExtracted prometheus.Counter
	RunDuration     prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	LiveComputes    prometheus.Counter
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_runs_total",
			Help:      "The total number of completed batch runs per tier",
		}, []string{"tier", "status"}),
		SheetsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_processed_total",
			Help:      "The total number of whiteboard sheets read and parsed",
		}),
		EventsExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_extracted_total",
			Help:      "The total number of events extracted from sheets",
		}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_run_duration_seconds",
			Help:      "Time taken by one tier batch run",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Schedule queries answered from the cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Schedule queries that missed the cache",
		}),
		LiveComputes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_computes_total",
			Help:      "Cache misses answered by a synchronous live computation",
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
