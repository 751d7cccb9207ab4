package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Daniel-Lam1702/project-3-team-5b-deploy/pkg/config"
)

// fakeServer answers the commands interface from maps. Expiry is recorded,
// never applied.
type fakeServer struct {
	strings  map[string]string
	counters map[string]int64
	ttl      map[string]time.Duration
	expires  int
	ttlReads int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		strings:  map[string]string{},
		counters: map[string]int64{},
		ttl:      map[string]time.Duration{},
	}
}

func (f *fakeServer) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeServer) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.strings[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeServer) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.strings[key] = fmt.Sprint(value)
	f.ttl[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeServer) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, taken := f.strings[key]; taken {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeServer) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.strings, k)
		delete(f.ttl, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeServer) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeServer) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires++
	f.ttl[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeServer) TTL(_ context.Context, key string) *redis.DurationCmd {
	f.ttlReads++
	if d, ok := f.ttl[key]; ok {
		return redis.NewDurationResult(d, nil)
	}
	return redis.NewDurationResult(-1, nil)
}

func TestFixedWindowCountsThenBlocks(t *testing.T) {
	ctx := t.Context()
	srv := newFakeServer()
	c := &Client{cmd: srv}

	allowed, n, err := c.FixedWindowAllow(ctx, "login:ip:192.0.2.1", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 1, n)
	require.Equal(t, 1, srv.expires)
	require.Equal(t, time.Minute, srv.ttl["pos:rate_limit:login:ip:192.0.2.1"])

	allowed, n, err = c.FixedWindowAllow(ctx, "login:ip:192.0.2.1", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, allowed)
	require.EqualValues(t, 2, n)
	require.Equal(t, 1, srv.expires, "live window keeps its expiry")
	require.Equal(t, 1, srv.ttlReads)

	allowed, n, err = c.FixedWindowAllow(ctx, "login:ip:192.0.2.1", 2, time.Minute)
	require.NoError(t, err)
	require.False(t, allowed)
	require.EqualValues(t, 3, n)
}

func TestIncrWithTTLRepairsLostExpiry(t *testing.T) {
	srv := newFakeServer()
	srv.counters["pos:rate_limit:orphan"] = 4
	c := &Client{cmd: srv}

	n, err := c.IncrWithTTL(t.Context(), "pos:rate_limit:orphan", 30*time.Second)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)
	require.Equal(t, 1, srv.expires)
	require.Equal(t, 30*time.Second, srv.ttl["pos:rate_limit:orphan"])
}

func TestSetNXClaimsOnce(t *testing.T) {
	ctx := t.Context()
	c := &Client{cmd: newFakeServer()}
	key := c.IdempotencyKey("orders", "till-3-77")

	won, err := c.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	require.True(t, won)

	won, err = c.SetNX(ctx, key, "pending", time.Minute)
	require.NoError(t, err)
	require.False(t, won)

	require.NoError(t, c.Del(ctx, key))
	require.NoError(t, c.Del(ctx))
	_, err = c.Get(ctx, key)
	require.ErrorIs(t, err, redis.Nil)
}

func TestKeyLayout(t *testing.T) {
	c := &Client{}
	require.Equal(t, "pos:idempotency:orders:k1", c.IdempotencyKey("orders", "k1"))
	require.Equal(t, "pos:idempotency:orders", c.IdempotencyKey("orders", "  "))
	require.Equal(t, "pos:rate_limit:login:employee:4", c.RateLimitKey("login:employee:4"))
	require.Equal(t, "pos:session:access:jti-1", c.AccessSessionKey("jti-1"))
}

func TestZeroClientRefusesCommands(t *testing.T) {
	ctx := t.Context()
	var c Client
	require.ErrorIs(t, c.Ping(ctx), errNotInitialized)
	_, _, err := c.FixedWindowAllow(ctx, "x", 1, time.Second)
	require.ErrorIs(t, err, errNotInitialized)

	withoutScripts := &Client{cmd: newFakeServer()}
	_, err = withoutScripts.CompareAndDelete(ctx, "k", "v")
	require.ErrorIs(t, err, errNotInitialized)
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	require.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:pw@cache:6380/2", PoolSize: 7})
	require.NoError(t, err)
	require.Equal(t, "cache:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, 7, opts.PoolSize)
}
