package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PermissionDecisions counts capability checks by outcome.
	PermissionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultroom_permission_decisions_total",
		Help: "Total number of permission decisions by capability and outcome",
	}, []string{"capability", "decision"})

	// AccessRequestTransitions counts access request resolutions by
	// terminal status.
	AccessRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultroom_access_request_transitions_total",
		Help: "Total number of access request transitions by resulting status",
	}, []string{"status"})

	// AccessRequestsSubmitted counts submitted access requests.
	AccessRequestsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaultroom_access_requests_submitted_total",
		Help: "Total number of access requests submitted",
	})

	// RoomsArchived counts room archivals by source (user or sweep).
	RoomsArchived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultroom_rooms_archived_total",
		Help: "Total number of rooms archived by source",
	}, []string{"source"})

	// SweepLastArchived is the number of rooms the most recent sweep
	// archived.
	SweepLastArchived = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vaultroom_sweep_last_archived",
		Help: "Number of rooms archived by the most recent expiration sweep",
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vaultroom_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vaultroom_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// ObserveQuery records the latency of a database query. The operation
// label is the leading SQL verb (SELECT, INSERT, UPDATE, DELETE).
func ObserveQuery(operation string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
