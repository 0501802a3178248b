// Package metrics is the single source of truth for campusgate's Prometheus
// metric names, labels and help strings. Everything registers with the
// default registry on import; /metrics serves it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campusgate"

// ── Access log ────────────────────────────────────────────────────────────────

// AccessRecordedTotal counts access events written to the log.
// Label:
//   - event_type: "entry" or "exit"
var AccessRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_recorded_total",
		Help:      "Total number of access events recorded.",
	},
	[]string{"event_type"},
)

// AccessRejectedTotal counts record requests that did not produce a row.
// Label:
//   - reason: "invalid", "unknown_user", "duplicate", "store_error"
var AccessRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_rejected_total",
		Help:      "Total number of access record requests rejected, by reason.",
	},
	[]string{"reason"},
)

// DedupTotal counts dedup guard decisions.
// Label:
//   - result: "hit" (duplicate, rejected) or "miss" (claimed)
var DedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dedup_total",
		Help:      "Total number of dedup guard checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Users ─────────────────────────────────────────────────────────────────────

// UserLookupsTotal counts lookups by badge code.
// Label:
//   - result: "found", "not_found", "error"
var UserLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_lookups_total",
		Help:      "Total number of user lookups by code, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "invalid", "duplicate", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "rejected", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestDuration measures handler latency.
// Labels:
//   - route: chi route pattern (e.g. "/api/users/bycode/{user_code}")
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "status"},
)
