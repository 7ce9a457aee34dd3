package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omegahub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "omegahub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// VotesRecorded counts accepted vote mutations by direction.
	VotesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omegahub_votes_recorded_total",
		Help: "Total number of accepted post votes by direction",
	}, []string{"direction"})

	// ViewsRecorded counts recorded post views.
	ViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "omegahub_views_recorded_total",
		Help: "Total number of recorded post views",
	})

	// ModerationDenials counts actions denied by the moderation gate.
	ModerationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omegahub_moderation_denials_total",
		Help: "Total number of actions denied by the moderation gate",
	}, []string{"action"})

	// RoleAssignments counts admin role assignments by resulting role.
	RoleAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "omegahub_role_assignments_total",
		Help: "Total number of role assignments by resulting role",
	}, []string{"role"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
