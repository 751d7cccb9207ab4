package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) CompareAndDelete(_ context.Context, key, expected string) (bool, error) {
	if v, ok := m.values[key]; !ok || v != expected {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	ctx := context.Background()
	first, err := NewRedisLock(store, LockKey("dev"), time.Hour)
	require.NoError(t, err)
	second, err := NewRedisLock(store, LockKey("dev"), time.Hour)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// the loser must not free a lock it never held
	require.NoError(t, second.Release(ctx))
	require.Contains(t, store.values, "pos:cron:lock:dev")

	require.NoError(t, first.Release(ctx))
	require.Empty(t, store.values)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisLockLeavesForeignOwner(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	ctx := context.Background()
	lock, err := NewRedisLock(store, "k", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	store.values["k"] = "someone-else"
	require.NoError(t, lock.Release(ctx))
	require.Equal(t, "someone-else", store.values["k"])
}

func TestLockKeyDefaultsToLocal(t *testing.T) {
	require.Equal(t, "pos:cron:lock:local", LockKey(""))
}
