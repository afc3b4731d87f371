package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order submission and payment protocol outcomes.
type CheckoutMetrics struct {
	orderDuration *prometheus.HistogramVec
	orders        *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_order_duration_seconds",
		Help:    "Duration of order creation calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"identity"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Order submissions by identity kind and outcome.",
	}, []string{"identity", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transitions_total",
		Help: "Payment state machine transitions by method and target state.",
	}, []string{"method", "state"})
	reg.MustRegister(orderDuration, orders, transitions)
	return &CheckoutMetrics{
		orderDuration: orderDuration,
		orders:        orders,
		transitions:   transitions,
	}
}

// ObserveOrderDuration records how long the order creation call took.
func (c *CheckoutMetrics) ObserveOrderDuration(identity string, duration time.Duration) {
	if c == nil || c.orderDuration == nil {
		return
	}
	c.orderDuration.WithLabelValues(normalizeLabel(identity)).Observe(duration.Seconds())
}

// IncOrder counts one order submission outcome.
func (c *CheckoutMetrics) IncOrder(identity, outcome string) {
	if c == nil || c.orders == nil {
		return
	}
	c.orders.WithLabelValues(normalizeLabel(identity), normalizeLabel(outcome)).Inc()
}

// IncTransition counts one payment state transition.
func (c *CheckoutMetrics) IncTransition(method, state string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(method), normalizeLabel(state)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
