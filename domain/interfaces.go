package domain

import (
	"context"
	"time"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByPhoneOrEmail returns the first user owning either identifier
	FindByPhoneOrEmail(ctx context.Context, phone, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateContact(ctx context.Context, userID uint, phone, email string) error
}

// OTPRepository persists issued codes
type OTPRepository interface {
	// ReplacePending deletes every unconsumed record for (target, purpose)
	// and inserts record, as one unit.
	ReplacePending(ctx context.Context, record *OTPRecord) error
	FindLatestPending(ctx context.Context, target string, purpose OTPPurpose) (*OTPRecord, error)
	// IncrementAttempts bumps attempts only while below max; false means the
	// budget was already spent.
	IncrementAttempts(ctx context.Context, id uint, max int) (bool, error)
	// MarkVerified flips verified only if still unconsumed and within budget;
	// false means another request won.
	MarkVerified(ctx context.Context, id uint, max int) (bool, error)
	FindVerifiedSince(ctx context.Context, target string, purpose OTPPurpose, since time.Time) (*OTPRecord, error)
	DeleteVerified(ctx context.Context, target string, purpose OTPPurpose) error
}

// ResetTokenRepository persists password-reset token hashes
type ResetTokenRepository interface {
	// Replace deletes unused tokens for the phone and inserts token, as one unit
	Replace(ctx context.Context, token *PasswordResetToken) error
	FindUnused(ctx context.Context, phone, tokenHash string) (*PasswordResetToken, error)
	// Redeem marks the token used and stores the new password hash for the
	// phone's owner in one transaction.
	Redeem(ctx context.Context, tokenID uint, phone, passwordHash string) error
}

// ContactFlowRepository stores in-progress contact-change flows per user
type ContactFlowRepository interface {
	Save(ctx context.Context, flow *ContactChangeFlow) error
	Find(ctx context.Context, userID uint) (*ContactChangeFlow, error)
	Delete(ctx context.Context, userID uint) error
}

// RateLimiter is a keyed fixed-window counter
type RateLimiter interface {
	Check(ctx context.Context, key string, policy RateLimitPolicy) (RateLimitDecision, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService validates access tokens issued by the session layer
type TokenService interface {
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// NotificationService delivers codes to users
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// MemberNumberGenerator allocates member numbers for new users
type MemberNumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// OTPService issues and verifies one-time passcodes
type OTPService interface {
	Issue(ctx context.Context, req OTPIssueRequest) (*OTPIssueResult, error)
	Verify(ctx context.Context, target, code string, purpose OTPPurpose) error
}

// ResetTokenService manages password-reset bearer tokens
type ResetTokenService interface {
	IssueAfterVerification(ctx context.Context, phone string) (string, error)
	Redeem(ctx context.Context, phone, password, resetToken string) error
}

// RegistrationService finalizes a verified registration
type RegistrationService interface {
	Register(ctx context.Context, req RegistrationRequest) (uint, error)
}

// ContactChangeService sequences re-verification of changed contacts
type ContactChangeService interface {
	Start(ctx context.Context, userID uint, req ContactChangeRequest) (*ContactChangeFlow, error)
	Verify(ctx context.Context, flow *ContactChangeFlow, code string) (*ContactChangeFlow, error)
}

// IdentityService is the rate-limited operation surface used by transports
type IdentityService interface {
	SendOTP(ctx context.Context, client *ClientContext, phone, email string, purpose OTPPurpose) (*OTPIssueResult, error)
	VerifyOTP(ctx context.Context, client *ClientContext, phone, code string, purpose OTPPurpose) error
	Register(ctx context.Context, client *ClientContext, req RegistrationRequest) (uint, error)
	ChangePassword(ctx context.Context, client *ClientContext, userID uint, currentPassword, newPassword string) error
	ResetPasswordSend(ctx context.Context, client *ClientContext, phone, email string) (*ResetSendResult, error)
	ResetPasswordVerify(ctx context.Context, client *ClientContext, phone, email, code string) (*ResetVerifyResult, error)
	ResetPassword(ctx context.Context, client *ClientContext, phone, password, resetToken string) error
	StartContactChange(ctx context.Context, client *ClientContext, userID uint, req ContactChangeRequest) (*ContactChangeFlow, error)
	VerifyContactChange(ctx context.Context, client *ClientContext, userID uint, code string) (*ContactChangeFlow, error)
	GetContactChange(ctx context.Context, userID uint) (*ContactChangeFlow, error)
	CancelContactChange(ctx context.Context, userID uint) error
}

// TokenClaims represents JWT token claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
