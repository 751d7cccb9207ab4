package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Get returns redis.Nil for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	return c.cmd.Get(ctx, key).Result()
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.cmd.Set(ctx, key, value, ttl).Err()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.cmd.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.cmd.Del(ctx, keys...).Err()
}

// IncrWithTTL increments key and makes sure it expires. The TTL is set on the
// first increment and repaired if a previous caller died before setting it.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	n, err := c.cmd.Incr(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return n, err
	}
	if n > 1 {
		remaining, err := c.cmd.TTL(ctx, key).Result()
		if err != nil || remaining >= 0 {
			return n, err
		}
	}
	return n, c.cmd.Expire(ctx, key, ttl).Err()
}

// FixedWindowAllow records one hit against scope and reports whether the
// window's count is still within limit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	n, err := c.IncrWithTTL(ctx, c.RateLimitKey(scope), window)
	if err != nil {
		return false, n, err
	}
	return n <= limit, n, nil
}

// CompareAndDelete removes key only while it still holds expected.
func (c *Client) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	if c.scripts == nil {
		return false, errNotInitialized
	}
	n, err := compareAndDeleteScript.Run(ctx, c.scripts, []string{key}, expected).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
