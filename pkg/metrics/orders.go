package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess        = "success"
	OutcomeInvalidCart    = "invalid_cart"
	OutcomeReferentialGap = "referential_gap"
	OutcomePersistence    = "persistence_error"
)

// OrderMetrics records order submission and inventory ledger activity.
type OrderMetrics struct {
	submitDuration *prometheus.HistogramVec
	submitted      *prometheus.CounterVec
	decrements     prometheus.Counter
	lowStock       *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_order_submit_duration_seconds",
		Help:    "Duration of order submission transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_orders_submitted_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	decrements := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_ingredient_decrements_total",
		Help: "Ingredient quantity decrements issued by placed orders.",
	})
	lowStock := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_ingredient_low_stock_total",
		Help: "Decrements that left an ingredient at or under its reorder level.",
	}, []string{"ingredient"})
	reg.MustRegister(submitDuration, submitted, decrements, lowStock)
	return &OrderMetrics{
		submitDuration: submitDuration,
		submitted:      submitted,
		decrements:     decrements,
		lowStock:       lowStock,
	}
}

// ObserveSubmit records one submission attempt.
func (m *OrderMetrics) ObserveSubmit(outcome string, duration time.Duration) {
	if m == nil || m.submitted == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.submitted.WithLabelValues(outcome).Inc()
	m.submitDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// AddDecrements counts ingredient updates issued inside a committed order.
func (m *OrderMetrics) AddDecrements(n int) {
	if m == nil || m.decrements == nil || n <= 0 {
		return
	}
	m.decrements.Add(float64(n))
}

// IncLowStock counts a low stock crossing for the named ingredient.
func (m *OrderMetrics) IncLowStock(ingredient string) {
	if m == nil || m.lowStock == nil {
		return
	}
	m.lowStock.WithLabelValues(normalizeLabel(ingredient)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
