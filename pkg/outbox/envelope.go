package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CurrentEnvelopeVersion is stamped on events that do not set their own.
const CurrentEnvelopeVersion = 1

// ErrEmptyPayload is returned when an envelope carries no data object.
var ErrEmptyPayload = errors.New("envelope has no data")

// ActorRef names the employee behind an event, when there is one.
type ActorRef struct {
	EmployeeID *int64 `json:"employeeId,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Envelope wraps every payload written to outbox_events and published to Pub/Sub.
type Envelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

func seal(eventID string, event DomainEvent) (Envelope, []byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("encode %s data: %w", event.EventType, err)
	}
	env := Envelope{
		Version:    event.Version,
		EventID:    eventID,
		OccurredAt: event.OccurredAt,
		Actor:      event.Actor,
		Data:       data,
	}
	if env.Version == 0 {
		env.Version = CurrentEnvelopeVersion
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("encode envelope: %w", err)
	}
	return env, raw, nil
}

// OpenEnvelope parses a stored or delivered message body.
func OpenEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// DecodeData unmarshals the wrapped payload into dst.
func (e Envelope) DecodeData(dst any) error {
	trimmed := bytes.TrimSpace(e.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
