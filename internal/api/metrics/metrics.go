// Package metrics defines and registers the custom Prometheus metrics of the
// booking back office. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts by outcome.
// Labels:
//   - flow: "session" (admin form) or "token" (API)
//   - outcome: "success", "failure" or "blocked"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by flow and outcome.",
	},
	[]string{"flow", "outcome"},
)

// LockoutsTotal counts failures that pushed a source over the attempt limit.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_lockouts_total",
		Help:      "Total number of sources locked out after too many failed logins.",
	},
)

// TrackedSources is the number of source keys held by the attempt tracker.
// Label:
//   - state: "tracked" or "blocked"
var TrackedSources = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "login_tracked_sources",
		Help:      "Source keys currently held by the login attempt tracker.",
	},
	[]string{"state"},
)

// SweptSourcesTotal counts expired tracker records removed by the sweep job.
var SweptSourcesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_swept_sources_total",
		Help:      "Total number of expired attempt records removed by the sweep job.",
	},
)

// ── Token metrics ─────────────────────────────────────────────────────────────

// TokenRejectionsTotal counts bearer tokens that did not authenticate.
// Label:
//   - reason: "malformed", "expired", "signature", "unknown_subject",
//     "inactive" or "mismatch"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of bearer tokens rejected, by reason.",
	},
	[]string{"reason"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts login audit events dropped on a full queue.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of login audit events dropped because a worker queue was full.",
	},
)
