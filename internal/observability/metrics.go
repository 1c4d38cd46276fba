// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Projection metrics
	EventsProcessed  *prometheus.CounterVec
	EventErrors      *prometheus.CounterVec
	ActionsWritten   *prometheus.CounterVec
	IDCollisions     *prometheus.CounterVec
	ApplyLatency     *prometheus.HistogramVec
	HighestBlockSeen prometheus.Gauge

	// Store metrics
	StoreErrors *prometheus.CounterVec

	// Health metrics
	LastProcessedTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lending_pool_indexer"
	}

	return &Metrics{
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "events_processed_total",
			Help:      "Total number of pool events processed by kind",
		}, []string{"event_kind"}),
		EventErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "event_errors_total",
			Help:      "Total number of failed event applications by kind",
		}, []string{"event_kind"}),
		ActionsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "actions_written_total",
			Help:      "Total number of history actions written by kind",
		}, []string{"action_kind"}),
		IDCollisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "id_collisions_total",
			Help:      "Total number of disambiguated history ID collisions by kind",
		}, []string{"action_kind"}),
		ApplyLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "apply_latency_seconds",
			Help:      "Event application latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_kind"}),
		HighestBlockSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "highest_block_seen",
			Help:      "Highest block number seen on the event feed",
		}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of store errors by store and operation",
		}, []string{"store", "operation"}),
		LastProcessedTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_processed_event_timestamp",
			Help:      "Block timestamp of the last successfully processed event",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordEventProcessed increments the processed counter for an event kind.
func RecordEventProcessed(eventKind string) {
	DefaultMetrics.EventsProcessed.WithLabelValues(eventKind).Inc()
}

// RecordEventError increments the error counter for an event kind.
func RecordEventError(eventKind string) {
	DefaultMetrics.EventErrors.WithLabelValues(eventKind).Inc()
}

// RecordActionWritten increments the written counter for an action kind.
func RecordActionWritten(actionKind string) {
	DefaultMetrics.ActionsWritten.WithLabelValues(actionKind).Inc()
}

// RecordIDCollision increments the collision counter for an action kind.
func RecordIDCollision(actionKind string) {
	DefaultMetrics.IDCollisions.WithLabelValues(actionKind).Inc()
}

// RecordApplyLatency records one event application latency.
func RecordApplyLatency(eventKind string, seconds float64) {
	DefaultMetrics.ApplyLatency.WithLabelValues(eventKind).Observe(seconds)
}

// UpdateHighestBlock updates the highest block gauge.
func UpdateHighestBlock(block uint64) {
	DefaultMetrics.HighestBlockSeen.Set(float64(block))
}

// UpdateLastProcessed updates the last processed event timestamp gauge.
func UpdateLastProcessed(timestamp int64) {
	DefaultMetrics.LastProcessedTimestamp.Set(float64(timestamp))
}
