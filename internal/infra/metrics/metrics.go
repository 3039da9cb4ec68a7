// Package metrics provides Prometheus metrics for KeepWell: counters,
// gauges and histograms for status computation, badge awards, score
// intake, the status cache, and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Status Computation ─────────────────────────────────────────────────────

// StatusRequests counts milestone status lookups by result.
var StatusRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "keepwell",
	Name:      "status_requests_total",
	Help:      "Milestone status lookups by result (hit, miss, error).",
}, []string{"result"})

// ComputeLatency tracks full status recomputation duration in seconds.
var ComputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "keepwell",
	Name:      "status_compute_seconds",
	Help:      "Milestone status recomputation duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
})

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgesAwarded counts badges awarded by category and tier.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "keepwell",
	Name:      "badges_awarded_total",
	Help:      "Total badges awarded.",
}, []string{"category", "tier"})

// ─── Score Intake ───────────────────────────────────────────────────────────

// ScoresRecorded counts accepted daily score submissions.
var ScoresRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "keepwell",
	Name:      "scores_recorded_total",
	Help:      "Total accepted daily score submissions.",
})

// ─── Status Cache ───────────────────────────────────────────────────────────

// CacheEntries tracks the number of live status cache entries.
var CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "keepwell",
	Name:      "status_cache_entries",
	Help:      "Number of entries in the status cache.",
})

// CacheInvalidations counts explicit status cache invalidations.
var CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "keepwell",
	Name:      "status_cache_invalidations_total",
	Help:      "Total explicit status cache invalidations.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "keepwell",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries counts recovery attempts per failing check.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "keepwell",
	Name:      "health_recoveries_total",
	Help:      "Total automatic recovery attempts per health check.",
}, []string{"check"})
