package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/logger"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/metrics"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/payloads"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/registry"
)

func TestDrainContinuesAfterFailure(t *testing.T) {
	store := &fakeStore{events: []models.OutboxEvent{orderEvent(t, "41"), orderEvent(t, "42")}}
	sender := &fakeSender{errs: []error{errors.New("transient"), nil}}
	relay := newTestRelay(t, store, sender, &fakeRegistry{resolved: ordersResolved()}, config.OutboxConfig{})

	n, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []uuid.UUID{store.events[0].ID}, store.failed)
	require.Equal(t, []uuid.UUID{store.events[1].ID}, store.published)
	require.Empty(t, store.parked)
}

func TestDrainSetsMessageAttributes(t *testing.T) {
	event := orderEvent(t, "77")
	store := &fakeStore{events: []models.OutboxEvent{event}}
	sender := &fakeSender{errs: []error{nil}}
	relay := newTestRelay(t, store, sender, &fakeRegistry{resolved: ordersResolved()}, config.OutboxConfig{})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"pos-orders"}, sender.topics)
	attrs := sender.sent[0].Attributes
	require.Equal(t, "77", attrs["aggregate_id"])
	require.Equal(t, string(enums.EventOrderPlaced), attrs["event_type"])
	require.Equal(t, string(enums.AggregateOrder), attrs["aggregate_type"])
	require.Equal(t, event.ID.String(), attrs["event_id"])
	require.JSONEq(t, string(event.Payload), string(sender.sent[0].Data))
}

func TestDrainParksUnresolvableRows(t *testing.T) {
	event := orderEvent(t, "5")
	store := &fakeStore{events: []models.OutboxEvent{event}}
	reg := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	relay := newTestRelay(t, store, &fakeSender{}, reg, config.OutboxConfig{MaxAttempts: 5})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{event.ID}, store.parked)
	require.Equal(t, []int{5}, store.parkedAt)
	require.Empty(t, store.published)
}

func TestDrainParksNonRetryableSendErrors(t *testing.T) {
	event := orderEvent(t, "6")
	store := &fakeStore{events: []models.OutboxEvent{event}}
	sender := &fakeSender{errs: []error{registry.NewNonRetryableError(errors.New("no topic"))}}
	relay := newTestRelay(t, store, sender, &fakeRegistry{resolved: ordersResolved()}, config.OutboxConfig{})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{event.ID}, store.parked)
}

func TestDrainParksAtMaxAttempts(t *testing.T) {
	event := orderEvent(t, "9")
	event.AttemptCount = 1
	store := &fakeStore{events: []models.OutboxEvent{event}}
	sender := &fakeSender{errs: []error{errors.New("transient")}}
	relay := newTestRelay(t, store, sender, &fakeRegistry{resolved: ordersResolved()}, config.OutboxConfig{MaxAttempts: 2})

	_, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{event.ID}, store.parked)
	require.Equal(t, []int{2}, store.parkedAt)
	require.Empty(t, store.failed)
}

func TestDrainRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := &fakeStore{events: []models.OutboxEvent{orderEvent(t, "1"), orderEvent(t, "2")}}
	sender := &fakeSender{errs: []error{nil, errors.New("boom")}}
	relay := newTestRelay(t, store, sender, &fakeRegistry{resolved: ordersResolved()}, config.OutboxConfig{})
	relay.metrics = metrics.NewOutboxMetrics(reg)

	_, err := relay.drain(context.Background())
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	counters := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				counters[mf.GetName()] += c.GetValue()
			}
		}
	}
	require.Equal(t, float64(1), counters["pos_outbox_published_total"])
	require.Equal(t, float64(1), counters["pos_outbox_failed_total"])
}

func TestDrainEmptyAndFetchError(t *testing.T) {
	relay := newTestRelay(t, &fakeStore{}, &fakeSender{}, &fakeRegistry{}, config.OutboxConfig{})
	n, err := relay.drain(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	relay = newTestRelay(t, &fakeStore{fetchErr: errors.New("db down")}, &fakeSender{}, &fakeRegistry{}, config.OutboxConfig{})
	_, err = relay.drain(context.Background())
	require.ErrorContains(t, err, "db down")
}

func TestNewRelayAppliesDefaults(t *testing.T) {
	relay := newTestRelay(t, &fakeStore{}, &fakeSender{}, &fakeRegistry{}, config.OutboxConfig{})
	require.Equal(t, 50, relay.batchSize)
	require.Equal(t, 10, relay.maxAttempts)
	require.Equal(t, 500*time.Millisecond, relay.interval)

	_, err := NewRelay(RelayParams{})
	require.Error(t, err)
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	relay := newTestRelay(t, &fakeStore{}, &fakeSender{}, &fakeRegistry{}, config.OutboxConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, relay.Run(ctx), context.Canceled)
}

func TestRunFailsWhenDependencyDown(t *testing.T) {
	relay := newTestRelay(t, &fakeStore{}, &fakeSender{pingErr: errors.New("unreachable")}, &fakeRegistry{}, config.OutboxConfig{})

	require.ErrorContains(t, relay.Run(context.Background()), "pubsub ping failed")
}

func newTestRelay(t *testing.T, store outboxStore, sender topicSender, reg eventResolver, cfg config.OutboxConfig) *Relay {
	t.Helper()
	relay, err := NewRelay(RelayParams{
		Outbox:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:       fakeDB{},
		Store:    store,
		Registry: reg,
		Sender:   sender,
	})
	require.NoError(t, err)
	return relay
}

func orderEvent(tb testing.TB, aggregateID string) models.OutboxEvent {
	tb.Helper()
	payload, err := json.Marshal(outbox.Envelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{"order_id": 1}`),
	})
	require.NoError(tb, err)
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       payload,
	}
}

func ordersResolved() *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Route: registry.Route{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			Topic:         "pos-orders",
		},
		Payload: &payloads.OrderPlacedEvent{},
	}
}

type fakeStore struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
	parked    []uuid.UUID
	parkedAt  []int
}

func (f *fakeStore) FetchUnpublishedForPublish(_ *gorm.DB, _, _ int) ([]models.OutboxEvent, error) {
	return f.events, f.fetchErr
}

func (f *fakeStore) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeStore) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeStore) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, terminalAttempts int) error {
	f.parked = append(f.parked, id)
	f.parkedAt = append(f.parkedAt, terminalAttempts)
	return nil
}

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakeSender struct {
	errs    []error
	pingErr error
	topics  []string
	sent    []*gcppubsub.Message
}

func (f *fakeSender) Ping(context.Context) error { return f.pingErr }

func (f *fakeSender) Send(_ context.Context, topic string, msg *gcppubsub.Message) error {
	f.topics = append(f.topics, topic)
	f.sent = append(f.sent, msg)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, nil
}
