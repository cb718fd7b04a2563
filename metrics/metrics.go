package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters and gauges backing the statistics surface. Exposing them over
// HTTP is the embedding application's job; this package only records.

var (
	// Subscriber metrics
	MessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixture_messages_received_total",
			Help: "Total number of broker messages received",
		},
	)

	MessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixture_messages_processed_total",
			Help: "Total number of broker messages handled without error",
		},
	)

	SubscriberErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixture_subscriber_errors_total",
			Help: "Total number of message handling and read errors",
		},
	)

	Reconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fixture_subscriber_reconnects_total",
			Help: "Total number of broker reconnect attempts",
		},
	)

	SchemaMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixture_schema_messages_total",
			Help: "Fixture-update messages by schema classification",
		},
		[]string{"schema"}, // "enhanced", "legacy", "unknown"
	)

	SubscriberConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fixture_subscriber_connected",
			Help: "Whether the subscriber currently holds a live subscription (1) or not (0)",
		},
	)

	// Reconcile metrics
	SyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixture_sync_total",
			Help: "Total number of reconcile runs by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	SyncOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixture_sync_fixtures_total",
			Help: "Per-fixture reconcile outcomes",
		},
		[]string{"outcome"}, // "created", "updated", "unchanged", "deleted", "skipped", "failed"
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fixture_sync_duration_seconds",
			Help:    "Duration of reconcile runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActiveSyncs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fixture_active_syncs",
			Help: "Number of reconcile runs currently in progress",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fixture_api_request_duration_seconds",
			Help:    "Duration of destination API calls in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordSyncResult tallies one finished reconcile run.
func RecordSyncResult(ok bool) {
	if ok {
		SyncTotal.WithLabelValues("success").Inc()
		return
	}
	SyncTotal.WithLabelValues("failure").Inc()
}
