// Package registry routes outbox rows to Pub/Sub topics and decodes their
// typed payloads.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/db/models"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/enums"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox"
	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/outbox/payloads"
)

// Route is where one event type is published.
type Route struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	Topic         string

	newPayload func() any
}

// ResolvedEvent is an outbox row that passed validation.
type ResolvedEvent struct {
	Route    Route
	Envelope outbox.Envelope
	Payload  any
}

// NonRetryableError marks a row that will never publish no matter how often
// the relay tries.
type NonRetryableError struct {
	Err error
}

func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable"
	}
	return "non-retryable: " + e.Err.Error()
}

func (e NonRetryableError) Unwrap() error { return e.Err }

// IsNonRetryable reports whether err or anything it wraps is a NonRetryableError.
func IsNonRetryable(err error) bool {
	var target NonRetryableError
	return errors.As(err, &target)
}

type EventRegistry struct {
	routes map[enums.OutboxEventType]Route
}

func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	orders := strings.TrimSpace(cfg.OrdersTopic)
	inventory := strings.TrimSpace(cfg.InventoryTopic)
	switch {
	case orders == "":
		return nil, errors.New("orders topic is required")
	case inventory == "":
		return nil, errors.New("inventory topic is required")
	}

	reg := &EventRegistry{routes: map[enums.OutboxEventType]Route{}}
	reg.add(enums.EventOrderPlaced, orders, func() any { return &payloads.OrderPlacedEvent{} })
	reg.add(enums.EventInventoryLowStock, inventory, func() any { return &payloads.LowStockEvent{} })
	return reg, nil
}

func (r *EventRegistry) add(eventType enums.OutboxEventType, topic string, newPayload func() any) {
	r.routes[eventType] = Route{
		EventType:     eventType,
		AggregateType: eventType.Aggregate(),
		Topic:         topic,
		newPayload:    newPayload,
	}
}

// Topics returns the distinct topic names, sorted.
func (r *EventRegistry) Topics() []string {
	set := map[string]bool{}
	for _, route := range r.routes {
		set[route.Topic] = true
	}
	topics := make([]string, 0, len(set))
	for topic := range set {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// Resolve checks the row against its route and decodes the payload. Every
// failure it returns is non-retryable.
func (r *EventRegistry) Resolve(row models.OutboxEvent) (*ResolvedEvent, error) {
	route, ok := r.routes[row.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("no route for event type %q", row.EventType))
	}
	if row.AggregateType != route.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("%s raised on %q, want %q", row.EventType, row.AggregateType, route.AggregateType))
	}
	if strings.TrimSpace(row.AggregateID) == "" {
		return nil, NewNonRetryableError(errors.New("aggregate_id is empty"))
	}

	env, err := outbox.OpenEnvelope(row.Payload)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}
	payload := route.newPayload()
	if err := env.DecodeData(payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s: %w", row.EventType, err))
	}
	return &ResolvedEvent{Route: route, Envelope: env, Payload: payload}, nil
}
