package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	keys map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]time.Duration{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = ttl
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.keys, k)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "pos:idempotency:" + scope + ":" + id
}

func TestClaimIsFirstWinsPerConsumer(t *testing.T) {
	store := newMemoryStore()
	guard, err := NewGuard(store, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := guard.Claim(ctx, "restock", "evt-1")
	require.NoError(t, err)
	require.True(t, first)

	again, err := guard.Claim(ctx, "restock", "evt-1")
	require.NoError(t, err)
	require.False(t, again)

	other, err := guard.Claim(ctx, "audit", "evt-1")
	require.NoError(t, err)
	require.True(t, other)

	require.Equal(t, time.Hour, store.keys["pos:idempotency:processed:restock:evt-1"])
}

func TestReleaseAllowsReprocessing(t *testing.T) {
	guard, err := NewGuard(newMemoryStore(), time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = guard.Claim(ctx, "restock", "evt-2")
	require.NoError(t, err)
	require.NoError(t, guard.Release(ctx, "restock", "evt-2"))

	first, err := guard.Claim(ctx, "restock", "evt-2")
	require.NoError(t, err)
	require.True(t, first)
}

func TestClaimRequiresIdentifiers(t *testing.T) {
	guard, err := NewGuard(newMemoryStore(), time.Minute)
	require.NoError(t, err)

	_, err = guard.Claim(context.Background(), " ", "evt-1")
	require.Error(t, err)
	_, err = guard.Claim(context.Background(), "restock", "")
	require.Error(t, err)
}

func TestNewGuardValidatesInput(t *testing.T) {
	_, err := NewGuard(nil, time.Minute)
	require.Error(t, err)
	_, err = NewGuard(newMemoryStore(), 0)
	require.Error(t, err)
}
