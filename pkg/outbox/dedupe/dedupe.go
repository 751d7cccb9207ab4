// Package dedupe lets Pub/Sub consumers skip outbox events they have already
// handled. Pub/Sub delivers at least once, so the same envelope can arrive
// more than once.
package dedupe

import (
	"context"
	"errors"
	"strings"
	"time"
)

type store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// Guard claims event ids per consumer with SET NX. Keys look like
// pos:idempotency:processed:<consumer>:<event id>.
type Guard struct {
	store store
	ttl   time.Duration
}

func NewGuard(s store, ttl time.Duration) (*Guard, error) {
	if s == nil {
		return nil, errors.New("dedupe store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("dedupe ttl must be positive")
	}
	return &Guard{store: s, ttl: ttl}, nil
}

// Claim reports true the first time consumer sees eventID within the TTL.
func (g *Guard) Claim(ctx context.Context, consumer, eventID string) (bool, error) {
	k, err := g.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, k, "1", g.ttl)
}

// Release drops a claim so a redelivery is processed again.
func (g *Guard) Release(ctx context.Context, consumer, eventID string) error {
	k, err := g.key(consumer, eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, k)
}

func (g *Guard) key(consumer, eventID string) (string, error) {
	consumer, eventID = strings.TrimSpace(consumer), strings.TrimSpace(eventID)
	if consumer == "" {
		return "", errors.New("consumer name is required")
	}
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey("processed:"+consumer, eventID), nil
}
