// metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Aggregation
	AggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bonus_aggregation_duration_seconds",
			Help:    "Duration of a full resolved-bonus aggregation",
			Buckets: prometheus.DefBuckets,
		},
	)

	ResolutionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_resolution_total",
			Help: "Casino resolutions by the step that matched",
		},
		[]string{"step"}, // "casino_id", "ref", "legacy_name", "slug", "unlinked"
	)

	// Ordering
	OrderWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonus_order_writes_total",
			Help: "Order-key writes issued by the sequencer",
		},
		[]string{"operation", "result"}, // operation: assign, sequence_all; result: ok, error
	)

	// Migration
	MigrationRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casino_migration_runs_total",
			Help: "Casino migration runs",
		},
	)

	MigrationItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casino_migration_items_total",
			Help: "Items touched by casino migrations",
		},
		[]string{"kind"}, // "casino_created", "bonus_updated", "group_error"
	)

	// Store
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Store calls that failed with a transport error",
		},
		[]string{"operation"},
	)

	// HTTP
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveAggregation records one aggregation run.
func ObserveAggregation(start time.Time) {
	AggregationDuration.Observe(time.Since(start).Seconds())
}

func RecordOrderWrite(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	OrderWrites.WithLabelValues(operation, result).Inc()
}
