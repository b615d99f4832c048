package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/redis/go-redis/v9"
)

// fixed window: the first hit sets the expiry, later hits only count.
// A key left without expiry gets one here as well.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`

// RedisLimiter implements domain.RateLimiter with a Redis fixed window
type RedisLimiter struct {
	client *redis.Client
	prefix string
	script *redis.Script
}

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		script: redis.NewScript(fixedWindowScript),
	}
}

// Check implements domain.RateLimiter. Any Redis failure is returned so the
// caller refuses the request.
func (l *RedisLimiter) Check(ctx context.Context, key string, policy domain.RateLimitPolicy) (domain.RateLimitDecision, error) {
	if policy.MaxAttempts <= 0 || policy.Window <= 0 {
		return domain.RateLimitDecision{}, fmt.Errorf("invalid rate limit policy for %q", key)
	}

	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	window := policy.Window.Milliseconds()
	if window <= 0 {
		window = 1
	}

	res, err := l.script.Run(ctx, l.client, []string{redisKey}, window).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return domain.RateLimitDecision{}, fmt.Errorf("rate limit check returned %d values", len(res))
	}

	if res[0] <= int64(policy.MaxAttempts) {
		return domain.RateLimitDecision{Allowed: true}, nil
	}
	return domain.RateLimitDecision{
		Allowed:    false,
		RetryAfter: time.Duration(res[1]) * time.Millisecond,
	}, nil
}
