// Package metrics defines and registers all custom Prometheus metrics for
// the clinic portal gateway. It is the single source of truth for metric
// names, labels, and help strings; registration happens at import time via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic_portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts against the backend.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts forwarded to the backend, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts self-service registration attempts.
// Label:
//   - result: "success" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts forwarded to the backend, by result.",
	},
	[]string{"result"},
)

// RevalidationsTotal counts startup session revalidations.
// Label:
//   - result: "ok" (fresh profile fetched) or "revoked" (fail-closed logout)
var RevalidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_revalidations_total",
		Help:      "Total number of persisted-session revalidations, by result.",
	},
	[]string{"result"},
)

// ── Route guard metrics ───────────────────────────────────────────────────────

// GuardDecisionsTotal counts role guard outcomes per dashboard area.
// Labels:
//   - area: the guarded path prefix (e.g. "/admin")
//   - decision: "admitted", "waiting", "login_redirect", or "role_redirect"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of role guard decisions, by area and outcome.",
	},
	[]string{"area", "decision"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration measures latency of calls to the clinic backend.
// Labels:
//   - method: HTTP method
//   - outcome: "ok", "client_error", "server_error", or "transport_error"
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of HTTP requests to the clinic backend.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "outcome"},
)

// AuditEventsDroppedTotal counts audit events discarded because the
// dispatcher queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped due to a full dispatch queue.",
	},
)
