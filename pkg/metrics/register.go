package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics records order and stock activity on the POS register.
type RegisterMetrics struct {
	ordersFinalized prometheus.Counter
	orderTotals     prometheus.Histogram
	kitchenSends    *prometheus.CounterVec
	commitFailures  *prometheus.CounterVec
	heldOrders      prometheus.Gauge
}

// Kitchen send result labels.
const (
	SendResultOK                = "ok"
	SendResultInsufficientStock = "insufficient_stock"
	SendResultError             = "error"
)

// NewRegisterMetrics registers the POS metrics on the provided registerer.
func NewRegisterMetrics(reg prometheus.Registerer) *RegisterMetrics {
	if reg == nil {
		return &RegisterMetrics{}
	}
	ordersFinalized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_finalized_total",
		Help: "Orders checked out and appended to the ledger.",
	})
	orderTotals := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_cents",
		Help:    "Grand totals of finalized orders in cents.",
		Buckets: prometheus.ExponentialBuckets(500, 2, 8),
	})
	kitchenSends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_sends_total",
		Help: "Send-to-kitchen attempts by result.",
	}, []string{"result"})
	commitFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_commit_failures_total",
		Help: "Failed stock file commits by store.",
	}, []string{"store"})
	heldOrders := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "held_orders",
		Help: "Carry-out orders currently parked on the hold queue.",
	})
	reg.MustRegister(ordersFinalized, orderTotals, kitchenSends, commitFailures, heldOrders)
	return &RegisterMetrics{
		ordersFinalized: ordersFinalized,
		orderTotals:     orderTotals,
		kitchenSends:    kitchenSends,
		commitFailures:  commitFailures,
		heldOrders:      heldOrders,
	}
}

// RecordOrderFinalized counts one checked-out order and observes its total.
func (m *RegisterMetrics) RecordOrderFinalized(totalCents int) {
	if m == nil || m.ordersFinalized == nil {
		return
	}
	m.ordersFinalized.Inc()
	m.orderTotals.Observe(float64(totalCents))
}

// RecordKitchenSend counts one send-to-kitchen attempt.
func (m *RegisterMetrics) RecordKitchenSend(result string) {
	if m == nil || m.kitchenSends == nil {
		return
	}
	m.kitchenSends.WithLabelValues(normalizeLabel(result)).Inc()
}

// RecordCommitFailure counts one failed stock file commit.
func (m *RegisterMetrics) RecordCommitFailure(store string) {
	if m == nil || m.commitFailures == nil {
		return
	}
	m.commitFailures.WithLabelValues(normalizeLabel(store)).Inc()
}

// SetHeldOrders tracks the current hold queue depth.
func (m *RegisterMetrics) SetHeldOrders(count int) {
	if m == nil || m.heldOrders == nil {
		return
	}
	m.heldOrders.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
