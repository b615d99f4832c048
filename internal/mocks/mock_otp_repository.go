package mocks

import (
	"context"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockOTPRepository implements domain.OTPRepository interface for testing
type MockOTPRepository struct {
	ReplacePendingFunc    func(ctx context.Context, record *domain.OTPRecord) error
	FindLatestPendingFunc func(ctx context.Context, target string, purpose domain.OTPPurpose) (*domain.OTPRecord, error)
	IncrementAttemptsFunc func(ctx context.Context, id uint, max int) (bool, error)
	MarkVerifiedFunc      func(ctx context.Context, id uint, max int) (bool, error)
	FindVerifiedSinceFunc func(ctx context.Context, target string, purpose domain.OTPPurpose, since time.Time) (*domain.OTPRecord, error)
	DeleteVerifiedFunc    func(ctx context.Context, target string, purpose domain.OTPPurpose) error
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

// ReplacePending stores record as the only pending code
func (m *MockOTPRepository) ReplacePending(ctx context.Context, record *domain.OTPRecord) error {
	if m.ReplacePendingFunc != nil {
		return m.ReplacePendingFunc(ctx, record)
	}
	record.ID = 1
	return nil
}

// FindLatestPending returns the newest unconsumed record
func (m *MockOTPRepository) FindLatestPending(ctx context.Context, target string, purpose domain.OTPPurpose) (*domain.OTPRecord, error) {
	if m.FindLatestPendingFunc != nil {
		return m.FindLatestPendingFunc(ctx, target, purpose)
	}
	return nil, domain.ErrOTPNotFound
}

// IncrementAttempts counts a failed attempt
func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, id uint, max int) (bool, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, id, max)
	}
	return true, nil
}

// MarkVerified consumes the record
func (m *MockOTPRepository) MarkVerified(ctx context.Context, id uint, max int) (bool, error) {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, id, max)
	}
	return true, nil
}

// FindVerifiedSince returns a verified record created after since
func (m *MockOTPRepository) FindVerifiedSince(ctx context.Context, target string, purpose domain.OTPPurpose, since time.Time) (*domain.OTPRecord, error) {
	if m.FindVerifiedSinceFunc != nil {
		return m.FindVerifiedSinceFunc(ctx, target, purpose, since)
	}
	return nil, domain.ErrOTPNotFound
}

// DeleteVerified removes consumed records
func (m *MockOTPRepository) DeleteVerified(ctx context.Context, target string, purpose domain.OTPPurpose) error {
	if m.DeleteVerifiedFunc != nil {
		return m.DeleteVerifiedFunc(ctx, target, purpose)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)
