package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lock keeps two cron workers from running the same cycle.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, expected string) (bool, error)
}

// LockKey scopes the lock to one deployment environment.
func LockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return "pos:cron:lock:" + env
}

// RedisLock is a lease: the key expires after ttl even if the holder dies,
// and a holder only ever deletes its own token.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	token string
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("cron lock: store is required")
	case key == "":
		return nil, errors.New("cron lock: key is required")
	case ttl <= 0:
		return nil, errors.New("cron lock: ttl must be positive")
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	won, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("cron lock %s: %w", l.key, err)
	}
	if won {
		l.token = token
	}
	return won, nil
}

// Release is a no-op when the lease was never won or has since passed to
// another worker.
func (l *RedisLock) Release(ctx context.Context) error {
	token := l.token
	if token == "" {
		return nil
	}
	l.token = ""
	if _, err := l.store.CompareAndDelete(ctx, l.key, token); err != nil {
		return fmt.Errorf("cron unlock %s: %w", l.key, err)
	}
	return nil
}
