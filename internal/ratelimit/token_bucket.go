package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether an action keyed by a string may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// TokenBucket is a redis-backed per-key token bucket. State lives in redis
// so the limit holds across processes; the refill logic runs in a Lua script
// so check-and-decrement is atomic per key.
type TokenBucket struct {
	client   *redis.Client
	script   *redis.Script
	prefix   string
	capacity int
	refill   int
	interval time.Duration
	ttl      time.Duration
}

// NewTokenBucket builds a limiter that allows capacity burst requests and
// refills refillTokens every interval.
func NewTokenBucket(client *redis.Client, prefix string, capacity, refillTokens int, interval time.Duration) *TokenBucket {
	script := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 and refill_tokens > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            local until_next = interval_ms - (now_ms - last_refill)
            if until_next < 0 then until_next = 0 end
            retry_after_ms = until_next
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)

        return { allowed, retry_after_ms }
    `)

	return &TokenBucket{
		client:   client,
		script:   script,
		prefix:   prefix,
		capacity: capacity,
		refill:   refillTokens,
		interval: interval,
		ttl:      10 * interval,
	}
}

// Allow consumes one token for the key. Redis failures fail open so a
// limiter outage never blocks the main workflow.
func (b *TokenBucket) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	args := []interface{}{
		time.Now().UnixMilli(),
		b.capacity,
		b.refill,
		b.interval.Milliseconds(),
		int64(b.ttl / time.Second),
	}

	vals, err := b.script.Run(ctx, b.client, []string{b.prefix + ":" + key}, args...).Result()
	if err != nil {
		return true, 0, err
	}

	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return true, 0, nil
	}
	allowed := asInt64(arr[0]) == 1
	retryAfter := time.Duration(asInt64(arr[1])) * time.Millisecond
	return allowed, retryAfter, nil
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
