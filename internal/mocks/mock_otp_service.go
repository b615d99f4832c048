package mocks

import (
	"context"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, req domain.OTPIssueRequest) (*domain.OTPIssueResult, error)
	VerifyFunc func(ctx context.Context, target, code string, purpose domain.OTPPurpose) error

	// Issued records every issue request in call order
	Issued []domain.OTPIssueRequest
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

// Issue issues a new code
func (m *MockOTPService) Issue(ctx context.Context, req domain.OTPIssueRequest) (*domain.OTPIssueResult, error) {
	m.Issued = append(m.Issued, req)
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, req)
	}
	return &domain.OTPIssueResult{
		Target:    req.Target,
		Channel:   req.Channel,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

// Verify verifies a code
func (m *MockOTPService) Verify(ctx context.Context, target, code string, purpose domain.OTPPurpose) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, target, code, purpose)
	}
	// Default behavior: accept "123456" as valid OTP
	if code == "123456" {
		return nil
	}
	return domain.ErrOTPInvalid
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
