package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*miniredis.Miniredis, *RedisLimiter) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisLimiter(client, "rl")
}

func TestRedisLimiter_Check(t *testing.T) {
	tests := []struct {
		name        string
		policy      domain.RateLimitPolicy
		calls       int
		wantAllowed []bool
	}{
		{
			name:        "within budget",
			policy:      domain.RateLimitPolicy{Window: time.Minute, MaxAttempts: 3},
			calls:       3,
			wantAllowed: []bool{true, true, true},
		},
		{
			name:        "over budget",
			policy:      domain.RateLimitPolicy{Window: time.Minute, MaxAttempts: 2},
			calls:       4,
			wantAllowed: []bool{true, true, false, false},
		},
		{
			name:        "single attempt",
			policy:      domain.RateLimitPolicy{Window: time.Hour, MaxAttempts: 1},
			calls:       2,
			wantAllowed: []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, limiter := setupLimiter(t)
			ctx := context.Background()

			for i := 0; i < tt.calls; i++ {
				decision, err := limiter.Check(ctx, "otp_send:1.2.3.4", tt.policy)
				require.NoError(t, err)
				assert.Equal(t, tt.wantAllowed[i], decision.Allowed, "call %d", i+1)
				if !decision.Allowed {
					assert.Greater(t, decision.RetryAfter, time.Duration(0))
					assert.LessOrEqual(t, decision.RetryAfter, tt.policy.Window)
				}
			}
		})
	}
}

func TestRedisLimiter_WindowResets(t *testing.T) {
	mr, limiter := setupLimiter(t)
	ctx := context.Background()
	policy := domain.RateLimitPolicy{Window: time.Minute, MaxAttempts: 1}

	decision, err := limiter.Check(ctx, "register:1.2.3.4", policy)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = limiter.Check(ctx, "register:1.2.3.4", policy)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	mr.FastForward(61 * time.Second)

	decision, err = limiter.Check(ctx, "register:1.2.3.4", policy)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	mr, limiter := setupLimiter(t)
	ctx := context.Background()
	policy := domain.RateLimitPolicy{Window: time.Minute, MaxAttempts: 1}

	for _, key := range []string{"otp_send:1.1.1.1", "otp_send:2.2.2.2", "otp_verify:1.1.1.1"} {
		decision, err := limiter.Check(ctx, key, policy)
		require.NoError(t, err)
		assert.True(t, decision.Allowed, key)
	}
	assert.True(t, mr.Exists("rl:otp_send:1.1.1.1"))
}

func TestRedisLimiter_ConcurrentChecks(t *testing.T) {
	_, limiter := setupLimiter(t)
	ctx := context.Background()
	policy := domain.RateLimitPolicy{Window: time.Minute, MaxAttempts: 5}

	var (
		wg      sync.WaitGroup
		allowed int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := limiter.Check(ctx, "otp_verify:9.9.9.9", policy)
			assert.NoError(t, err)
			if decision.Allowed {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), allowed)
}

func TestRedisLimiter_FailsClosed(t *testing.T) {
	mr, limiter := setupLimiter(t)
	mr.Close()

	decision, err := limiter.Check(context.Background(), "otp_send:1.2.3.4",
		domain.RateLimitPolicy{Window: time.Minute, MaxAttempts: 5})
	assert.Error(t, err)
	assert.False(t, decision.Allowed)
}

func TestRedisLimiter_InvalidPolicy(t *testing.T) {
	_, limiter := setupLimiter(t)

	for _, policy := range []domain.RateLimitPolicy{
		{Window: 0, MaxAttempts: 5},
		{Window: time.Minute, MaxAttempts: 0},
	} {
		t.Run(fmt.Sprintf("%v/%d", policy.Window, policy.MaxAttempts), func(t *testing.T) {
			_, err := limiter.Check(context.Background(), "k", policy)
			assert.Error(t, err)
		})
	}
}
