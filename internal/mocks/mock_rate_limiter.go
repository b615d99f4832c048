package mocks

import (
	"context"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockRateLimiter implements domain.RateLimiter interface for testing
type MockRateLimiter struct {
	CheckFunc func(ctx context.Context, key string, policy domain.RateLimitPolicy) (domain.RateLimitDecision, error)

	// Keys records every checked key in call order
	Keys []string
}

// NewMockRateLimiter creates a new MockRateLimiter that allows everything
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

// Check consults the limiter
func (m *MockRateLimiter) Check(ctx context.Context, key string, policy domain.RateLimitPolicy) (domain.RateLimitDecision, error) {
	m.Keys = append(m.Keys, key)
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, key, policy)
	}
	return domain.RateLimitDecision{Allowed: true}, nil
}

// Compile-time interface compliance verification
var _ domain.RateLimiter = (*MockRateLimiter)(nil)
