// Package metrics provides Prometheus metrics for the coach service:
// awards, levels, badges, celebrations, persistence and health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Awards ─────────────────────────────────────────────────────────────────

// AwardsTotal counts award calls by event type.
var AwardsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "awards_total",
	Help:      "Total award calls by event type.",
}, []string{"type"})

// XPAwarded sums XP granted by event type, streak bonuses included.
var XPAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "xp_awarded_total",
	Help:      "Total XP granted by event type.",
}, []string{"type"})

// AwardDuration tracks how long an award takes, persistence included.
var AwardDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "coach",
	Name:      "award_duration_seconds",
	Help:      "Award processing duration in seconds.",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
})

// LevelUps counts awards that crossed a level boundary.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "level_ups_total",
	Help:      "Total level-ups.",
})

// ─── Badges & Celebrations ──────────────────────────────────────────────────

// BadgesUnlocked counts badge unlocks by badge id.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "badges_unlocked_total",
	Help:      "Total badge unlocks by badge.",
}, []string{"badge"})

// Celebrations counts celebrations by kind.
var Celebrations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "celebrations_total",
	Help:      "Total celebrations by kind.",
}, []string{"kind"})

// Resets counts user-initiated state resets.
var Resets = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "resets_total",
	Help:      "Total gamification state resets.",
})

// ─── Persistence ────────────────────────────────────────────────────────────

// PersistFailures counts state store failures by operation
// (load, decode, save, delete).
var PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "persist_failures_total",
	Help:      "Total state store failures by operation.",
}, []string{"op"})

// SaveConflicts counts saves that lost a version race and were reapplied.
var SaveConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "save_conflicts_total",
	Help:      "Total saves retried because the stored state changed underneath.",
})

// ProfilesLoaded tracks the number of profiles held in memory.
var ProfilesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "coach",
	Name:      "profiles_loaded",
	Help:      "Number of profiles currently cached in memory.",
})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "coach",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks auto-recovery attempts.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "coach",
	Name:      "health_recoveries_total",
	Help:      "Total auto-recovery attempts per check.",
}, []string{"check"})

// TypeLabel bounds the label cardinality of caller-supplied event types.
func TypeLabel(known bool, name string) string {
	if !known {
		return "unknown"
	}
	return name
}
