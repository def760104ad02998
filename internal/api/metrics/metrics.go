// Package metrics defines and registers all custom Prometheus metrics for the
// storefront commerce API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersFinalizedTotal counts orders created by finalize.
// Label:
//   - status: "paid" or "pending"
var OrdersFinalizedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_finalized_total",
		Help:      "Total number of orders created from carts, by order status.",
	},
	[]string{"status"},
)

// FinalizeDuration measures a finalize call end-to-end, gateway lookup included.
// Label:
//   - result: "ok" or a short failure reason (e.g. "empty_cart", "gateway")
var FinalizeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "finalize_duration_seconds",
		Help:      "Duration of cart to order finalization.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// CartClearFailuresTotal counts paid orders whose cart could not be cleared
// after the order was persisted.
var CartClearFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_clear_failures_total",
		Help:      "Total number of paid orders persisted whose cart clear failed.",
	},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentIntentsTotal counts payment intent issuance attempts.
// Label:
//   - result: "created", "replayed", "gateway_error", "conflict"
var PaymentIntentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_intents_total",
		Help:      "Total number of payment intent requests, by result.",
	},
	[]string{"result"},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts successful cart writes.
// Label:
//   - op: "add", "update", "remove"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of persisted cart mutations, by operation.",
	},
	[]string{"op"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected authorization attempts.
// Label:
//   - reason: "missing_credential", "rejected_credential", "unknown_user",
//     "no_active_session", "forbidden"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected authorization attempts, by reason.",
	},
	[]string{"reason"},
)

// SessionsCreatedTotal counts sessions opened by login.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of login sessions created.",
	},
)
