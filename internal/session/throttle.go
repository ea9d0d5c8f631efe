package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle caps failed-login attempts per key (identifier + client IP).
// A Reset after successful login clears the window.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

var loginAttemptScript = redis.NewScript(`
-- KEYS[1] = attempt counter key
-- ARGV[1] = limit (int)
-- ARGV[2] = window_ms (int)
--
-- Returns:
--  1 if the attempt is allowed
--  0 if the window limit is exhausted
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
else
  -- Ensure TTL exists even if the key predates a crash
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
  end
end

if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

// RedisThrottle is a fixed-window attempt counter shared across API
// instances.
//
// Atomicity comes from the Lua script; the window TTL guarantees stale
// counters cannot survive a process crash.
type RedisThrottle struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisThrottle(rdb *redis.Client, limit int, window time.Duration) (*RedisThrottle, error) {
	if rdb == nil {
		return nil, fmt.Errorf("session: redis client is required")
	}
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisThrottle{rdb: rdb, limit: limit, window: window}, nil
}

func (t *RedisThrottle) key(k string) string { return "login_attempts:" + k }

func (t *RedisThrottle) Allow(ctx context.Context, key string) (bool, error) {
	res, err := loginAttemptScript.Run(ctx, t.rdb, []string{t.key(key)}, t.limit, t.window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	return t.rdb.Del(ctx, t.key(key)).Err()
}

// NoopThrottle allows everything; used when Redis is not configured
// and in tests.
type NoopThrottle struct{}

func (NoopThrottle) Allow(ctx context.Context, key string) (bool, error) { return true, nil }

func (NoopThrottle) Reset(ctx context.Context, key string) error { return nil }
