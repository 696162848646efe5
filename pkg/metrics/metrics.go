package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Ledger metrics
	UsageUpserts        *prometheus.CounterVec
	UsageUpsertLatency  prometheus.Histogram
	UsageConflictRetries prometheus.Counter

	// Reporter metrics
	ReportRequests  *prometheus.CounterVec
	ReportDegraded  *prometheus.CounterVec
	ReportCacheHits *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		UsageUpserts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_upserts_total",
			Help:      "Total number of usage ledger upserts",
		}, []string{"outcome"}),
		UsageUpsertLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "usage_upsert_duration_seconds",
			Help:      "Time spent performing ledger upserts",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		UsageConflictRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_conflict_retries_total",
			Help:      "Unique-violation races converted to update retries",
		}),
		ReportRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_requests_total",
			Help:      "Total number of report requests",
		}, []string{"view"}),
		ReportDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_degraded_total",
			Help:      "Report requests served from the degraded fallback",
		}, []string{"view"}),
		ReportCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_hits_total",
			Help:      "Report requests served from the Redis result cache",
		}, []string{"view"}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
