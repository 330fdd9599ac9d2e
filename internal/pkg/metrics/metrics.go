// Package metrics defines and registers all custom Prometheus metrics for the
// CBT API. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cbt"

// ── Authentication ────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts session resolutions and credential checks.
// Labels:
//   - flow: "login", "register" or "session"
//   - result: "ok", or the failure reason slug (e.g. "expired", "invalid")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts by flow and result.",
	},
	[]string{"flow", "result"},
)

// SessionCacheLookupsTotal counts session cache lookups.
// Label:
//   - result: "hit" or "miss"
var SessionCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_cache_lookups_total",
		Help:      "Total number of session cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// SessionCacheEntries tracks the number of live entries after each sweep.
var SessionCacheEntries = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_cache_entries",
		Help:      "Number of entries held by the in-process session cache.",
	},
)

// ── Authorization ─────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts access-scope decisions.
// Labels:
//   - op: "read", "create" or "feedback"
//   - decision: "allow" or "deny"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access-scope decisions by operation and outcome.",
	},
	[]string{"op", "decision"},
)

// RoleGateDenialsTotal counts requests rejected by a role gate.
// Label:
//   - gate: "admin", "therapist" or "client_or_admin"
var RoleGateDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_gate_denials_total",
		Help:      "Total number of requests rejected by a role gate.",
	},
	[]string{"gate"},
)

// ── Audit ─────────────────────────────────────────────────────────────────────

// AuditEventsTotal counts audit events by outcome.
// Label:
//   - result: "written", "dropped" or "failed"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events, labelled by outcome.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
