package mocks

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockMemberNumberGenerator implements domain.MemberNumberGenerator for testing
type MockMemberNumberGenerator struct {
	NextFunc func(ctx context.Context) (string, error)
	seq      int64
}

// NewMockMemberNumberGenerator creates a generator returning M0001, M0002, ...
func NewMockMemberNumberGenerator() *MockMemberNumberGenerator {
	return &MockMemberNumberGenerator{}
}

// Next returns the next member number
func (m *MockMemberNumberGenerator) Next(ctx context.Context) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx)
	}
	return fmt.Sprintf("M%04d", atomic.AddInt64(&m.seq, 1)), nil
}

// Compile-time interface compliance verification
var _ domain.MemberNumberGenerator = (*MockMemberNumberGenerator)(nil)
