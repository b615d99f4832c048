package domain

import (
	"strings"
	"time"
)

// User represents a registered identity
type User struct {
	ID           uint
	Phone        string
	Email        string
	PasswordHash string
	MemberNumber string
	Nickname     string
	Title        string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OTPPurpose is the business context a code was issued for
type OTPPurpose string

const (
	PurposeRegister      OTPPurpose = "REGISTER"
	PurposeResetPassword OTPPurpose = "RESET_PASSWORD"
	PurposeUpdateContact OTPPurpose = "UPDATE_CONTACT"
)

// ParseOTPPurpose accepts both the wire spelling (reset-password) and the
// stored spelling (RESET_PASSWORD).
func ParseOTPPurpose(s string) (OTPPurpose, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "register":
		return PurposeRegister, true
	case "reset-password":
		return PurposeResetPassword, true
	case "update-contact":
		return PurposeUpdateContact, true
	}
	return "", false
}

// Channel is the transport a code is delivered over
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// OTPRecord is a persisted one-time passcode.
// Target is the E.164 phone, or the lower-cased email for email-channel
// contact verification.
type OTPRecord struct {
	ID        uint
	Target    string
	Purpose   OTPPurpose
	Channel   Channel
	Code      string
	ExpiresAt time.Time
	Attempts  int
	Verified  bool
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// PasswordResetToken stores only the hash of the bearer token
type PasswordResetToken struct {
	ID        uint
	Phone     string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// OTPIssueRequest describes a code to issue.
// Email is required for REGISTER (uniqueness precondition) and is the
// delivery address when Channel is ChannelEmail.
type OTPIssueRequest struct {
	Target  string
	Email   string
	Purpose OTPPurpose
	Channel Channel
}

// OTPIssueResult is returned once a code has been persisted
type OTPIssueResult struct {
	Target    string
	Channel   Channel
	ExpiresAt time.Time
}

// RegistrationRequest carries the fields needed to finalize a registration
type RegistrationRequest struct {
	Phone    string
	Password string
	Email    string
	Nickname string
	Title    string
}

// ResetSendResult tells the caller which channel the reset code went to
type ResetSendResult struct {
	Method Channel
}

// ResetVerifyResult carries the raw reset token, returned exactly once
type ResetVerifyResult struct {
	Verified   bool
	ResetToken string
}

// Rate-limited action classes. Limiter keys are "<action>:<client ip>".
const (
	ActionOTPSend        = "otp_send"
	ActionOTPVerify      = "otp_verify"
	ActionRegister       = "register"
	ActionResetPassword  = "reset_password"
	ActionChangePassword = "change_password"
	ActionContactChange  = "contact_change"
)

// RateLimitPolicy is the budget for one action class
type RateLimitPolicy struct {
	Window      time.Duration
	MaxAttempts int
}

// RateLimitDecision is the outcome of a limiter check
type RateLimitDecision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// ContactChangeStep is the position of a contact-change flow
type ContactChangeStep string

const (
	StepForm      ContactChangeStep = "FORM"
	StepOTPPhone  ContactChangeStep = "OTP_PHONE"
	StepOTPEmail  ContactChangeStep = "OTP_EMAIL"
	StepCommitted ContactChangeStep = "COMMITTED"
)

// ContactChangeRequest holds the values submitted on the form.
// Empty fields mean "unchanged".
type ContactChangeRequest struct {
	Phone string
	Email string
}

// ContactChangeFlow is the state carried between contact-change requests
type ContactChangeFlow struct {
	UserID        uint              `json:"user_id"`
	Step          ContactChangeStep `json:"step"`
	NewPhone      string            `json:"new_phone,omitempty"`
	NewEmail      string            `json:"new_email,omitempty"`
	PhonePending  bool              `json:"phone_pending"`
	EmailPending  bool              `json:"email_pending"`
	PhoneVerified bool              `json:"phone_verified"`
	EmailVerified bool              `json:"email_verified"`
	StartedAt     time.Time         `json:"started_at"`
}

// Done reports whether every pending channel has been verified
func (f *ContactChangeFlow) Done() bool {
	return (!f.PhonePending || f.PhoneVerified) && (!f.EmailPending || f.EmailVerified)
}
