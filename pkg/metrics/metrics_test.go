package metrics

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// series flattens a gather into "name{k=v,...}" -> metric.
func series(t *testing.T, reg *prometheus.Registry) map[string]*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]*dto.Metric{}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				pairs = append(pairs, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(pairs)
			out[family.GetName()+"{"+strings.Join(pairs, ",")+"}"] = m
		}
	}
	return out
}

func TestOrderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.ObserveSubmit(OutcomeSuccess, 120*time.Millisecond)
	m.ObserveSubmit(OutcomeSuccess, 80*time.Millisecond)
	m.ObserveSubmit(OutcomeInvalidCart, time.Millisecond)
	m.AddDecrements(3)
	m.AddDecrements(0)
	m.AddDecrements(-2)
	m.IncLowStock("Rice")
	m.IncLowStock("")

	got := series(t, reg)
	require.EqualValues(t, 2, got["pos_orders_submitted_total{outcome=success}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_orders_submitted_total{outcome=invalid_cart}"].GetCounter().GetValue())

	hist := got["pos_order_submit_duration_seconds{outcome=success}"].GetHistogram()
	require.EqualValues(t, 2, hist.GetSampleCount())
	require.InDelta(t, 0.2, hist.GetSampleSum(), 1e-9)

	require.EqualValues(t, 3, got["pos_ingredient_decrements_total{}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_ingredient_low_stock_total{ingredient=Rice}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_ingredient_low_stock_total{ingredient=unknown}"].GetCounter().GetValue())
}

func TestHTTPMetricsSplitsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodPost, "/api/orders", http.StatusCreated, 5*time.Millisecond)
	m.Observe(http.MethodPost, "/api/orders", http.StatusUnprocessableEntity, time.Millisecond)

	got := series(t, reg)
	require.EqualValues(t, 1, got["pos_http_requests_total{method=POST,route=/api/orders,status=201}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_http_requests_total{method=POST,route=/api/orders,status=422}"].GetCounter().GetValue())
	require.EqualValues(t, 2, got["pos_http_request_duration_seconds{method=POST,route=/api/orders}"].GetHistogram().GetSampleCount())
}

func TestOutboxAndCronMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	outbox := NewOutboxMetrics(reg)
	cron := NewCronJobMetrics(reg)

	outbox.ObserveBatch(10 * time.Millisecond)
	outbox.IncPublished("order.placed")
	outbox.IncFailed("inventory.low_stock")
	cron.ObserveRun("outbox_retention", time.Second, nil)
	cron.ObserveRun("outbox_retention", time.Second, errors.New("db down"))

	got := series(t, reg)
	require.EqualValues(t, 1, got["pos_outbox_batch_duration_seconds{}"].GetHistogram().GetSampleCount())
	require.EqualValues(t, 1, got["pos_outbox_published_total{event_type=order.placed}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_outbox_failed_total{event_type=inventory.low_stock}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_cron_job_runs_total{job=outbox_retention,result=success}"].GetCounter().GetValue())
	require.EqualValues(t, 1, got["pos_cron_job_runs_total{job=outbox_retention,result=failure}"].GetCounter().GetValue())
}

func TestMetricsWithoutRegistererAreNoops(t *testing.T) {
	require.NotPanics(t, func() {
		var orders *OrderMetrics
		orders.ObserveSubmit(OutcomeSuccess, time.Second)
		NewOrderMetrics(nil).IncLowStock("Rice")
		NewOutboxMetrics(nil).IncPublished("order.placed")
		NewHTTPMetrics(nil).Observe(http.MethodGet, "/api/menu-items", http.StatusOK, time.Millisecond)
		NewCronJobMetrics(nil).ObserveRun("report", time.Second, nil)
	})
}
