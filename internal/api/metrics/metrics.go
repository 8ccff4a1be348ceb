// Package metrics defines and registers all custom Prometheus metrics for the
// JNF Payroll auth API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// RequestsTotal counts gateway operations by outcome.
// Labels:
//   - operation: "login", "verify_token", "protected", "create_user", "list_users"
//   - status: the HTTP status returned (e.g. "200", "401")
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_requests_total",
		Help:      "Total number of auth gateway operations, by operation and status.",
	},
	[]string{"operation", "status"},
)

// TokensIssuedTotal counts tokens handed out on successful login.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access tokens issued.",
	},
)

// UsersCreatedTotal counts registrations.
// Label:
//   - role: role assigned to the new user
var UsersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_created_total",
		Help:      "Total number of users created, by role.",
	},
	[]string{"role"},
)

// ── Hashing metrics ───────────────────────────────────────────────────────────

// HashQueueDepth tracks how many hashing jobs are waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// HashDuration measures a single bcrypt operation.
// Label:
//   - op: "hash" or "compare"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hash_duration_seconds",
		Help:      "Duration of password hash and compare operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)
