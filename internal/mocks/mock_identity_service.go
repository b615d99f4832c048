package mocks

import (
	"context"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockIdentityService implements domain.IdentityService interface for testing
type MockIdentityService struct {
	SendOTPFunc             func(ctx context.Context, client *domain.ClientContext, phone, email string, purpose domain.OTPPurpose) (*domain.OTPIssueResult, error)
	VerifyOTPFunc           func(ctx context.Context, client *domain.ClientContext, phone, code string, purpose domain.OTPPurpose) error
	RegisterFunc            func(ctx context.Context, client *domain.ClientContext, req domain.RegistrationRequest) (uint, error)
	ChangePasswordFunc      func(ctx context.Context, client *domain.ClientContext, userID uint, currentPassword, newPassword string) error
	ResetPasswordSendFunc   func(ctx context.Context, client *domain.ClientContext, phone, email string) (*domain.ResetSendResult, error)
	ResetPasswordVerifyFunc func(ctx context.Context, client *domain.ClientContext, phone, email, code string) (*domain.ResetVerifyResult, error)
	ResetPasswordFunc       func(ctx context.Context, client *domain.ClientContext, phone, password, resetToken string) error
	StartContactChangeFunc  func(ctx context.Context, client *domain.ClientContext, userID uint, req domain.ContactChangeRequest) (*domain.ContactChangeFlow, error)
	VerifyContactChangeFunc func(ctx context.Context, client *domain.ClientContext, userID uint, code string) (*domain.ContactChangeFlow, error)
	GetContactChangeFunc    func(ctx context.Context, userID uint) (*domain.ContactChangeFlow, error)
	CancelContactChangeFunc func(ctx context.Context, userID uint) error
}

// NewMockIdentityService creates a new MockIdentityService with default behaviors
func NewMockIdentityService() *MockIdentityService {
	return &MockIdentityService{}
}

// SendOTP issues a code
func (m *MockIdentityService) SendOTP(ctx context.Context, client *domain.ClientContext, phone, email string, purpose domain.OTPPurpose) (*domain.OTPIssueResult, error) {
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, client, phone, email, purpose)
	}
	return &domain.OTPIssueResult{Target: phone, Channel: domain.ChannelSMS}, nil
}

// VerifyOTP verifies a code
func (m *MockIdentityService) VerifyOTP(ctx context.Context, client *domain.ClientContext, phone, code string, purpose domain.OTPPurpose) error {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, client, phone, code, purpose)
	}
	return nil
}

// Register finalizes a registration
func (m *MockIdentityService) Register(ctx context.Context, client *domain.ClientContext, req domain.RegistrationRequest) (uint, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, client, req)
	}
	return 1, nil
}

// ChangePassword changes the password of an authenticated user
func (m *MockIdentityService) ChangePassword(ctx context.Context, client *domain.ClientContext, userID uint, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, client, userID, currentPassword, newPassword)
	}
	return nil
}

// ResetPasswordSend sends a reset code
func (m *MockIdentityService) ResetPasswordSend(ctx context.Context, client *domain.ClientContext, phone, email string) (*domain.ResetSendResult, error) {
	if m.ResetPasswordSendFunc != nil {
		return m.ResetPasswordSendFunc(ctx, client, phone, email)
	}
	return &domain.ResetSendResult{Method: domain.ChannelSMS}, nil
}

// ResetPasswordVerify verifies a reset code and returns a token
func (m *MockIdentityService) ResetPasswordVerify(ctx context.Context, client *domain.ClientContext, phone, email, code string) (*domain.ResetVerifyResult, error) {
	if m.ResetPasswordVerifyFunc != nil {
		return m.ResetPasswordVerifyFunc(ctx, client, phone, email, code)
	}
	return &domain.ResetVerifyResult{Verified: true, ResetToken: "reset_token"}, nil
}

// ResetPassword redeems a reset token
func (m *MockIdentityService) ResetPassword(ctx context.Context, client *domain.ClientContext, phone, password, resetToken string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, client, phone, password, resetToken)
	}
	return nil
}

// StartContactChange starts a contact change flow
func (m *MockIdentityService) StartContactChange(ctx context.Context, client *domain.ClientContext, userID uint, req domain.ContactChangeRequest) (*domain.ContactChangeFlow, error) {
	if m.StartContactChangeFunc != nil {
		return m.StartContactChangeFunc(ctx, client, userID, req)
	}
	return &domain.ContactChangeFlow{UserID: userID, Step: domain.StepOTPPhone, NewPhone: req.Phone, PhonePending: req.Phone != ""}, nil
}

// VerifyContactChange advances a contact change flow
func (m *MockIdentityService) VerifyContactChange(ctx context.Context, client *domain.ClientContext, userID uint, code string) (*domain.ContactChangeFlow, error) {
	if m.VerifyContactChangeFunc != nil {
		return m.VerifyContactChangeFunc(ctx, client, userID, code)
	}
	return &domain.ContactChangeFlow{UserID: userID, Step: domain.StepCommitted}, nil
}

// GetContactChange returns the flow in progress
func (m *MockIdentityService) GetContactChange(ctx context.Context, userID uint) (*domain.ContactChangeFlow, error) {
	if m.GetContactChangeFunc != nil {
		return m.GetContactChangeFunc(ctx, userID)
	}
	return nil, domain.ErrContactFlowNotFound
}

// CancelContactChange discards the flow in progress
func (m *MockIdentityService) CancelContactChange(ctx context.Context, userID uint) error {
	if m.CancelContactChangeFunc != nil {
		return m.CancelContactChangeFunc(ctx, userID)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.IdentityService = (*MockIdentityService)(nil)
