package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records the publisher loop.
type OutboxMetrics struct {
	batchDuration prometheus.Histogram
	published     *prometheus.CounterVec
	failed        *prometheus.CounterVec
}

// NewOutboxMetrics registers the publisher metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_outbox_published_total",
		Help: "Outbox events published.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_outbox_failed_total",
		Help: "Outbox publish failures.",
	}, []string{"event_type"})
	reg.MustRegister(batchDuration, published, failed)
	return &OutboxMetrics{batchDuration: batchDuration, published: published, failed: failed}
}

func (m *OutboxMetrics) ObserveBatch(duration time.Duration) {
	if m == nil || m.batchDuration == nil {
		return
	}
	m.batchDuration.Observe(duration.Seconds())
}

func (m *OutboxMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (m *OutboxMetrics) IncFailed(eventType string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}
