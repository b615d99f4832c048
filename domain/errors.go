package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode classifies failures returned across the operation boundary
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeInternal     ErrorCode = "INTERNAL"
)

// Error is a typed failure whose Message is safe to show to end users.
// Err keeps the underlying cause for logs only.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error

	// RetryAfter is set on origin throttling failures
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// works for every not-found failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// NewError creates a typed error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the taxonomy code, defaulting to CodeInternal
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Code-only sentinels for errors.Is
var (
	ErrValidation  = &Error{Code: CodeValidation}
	ErrNotFound    = &Error{Code: CodeNotFound}
	ErrConflict    = &Error{Code: CodeConflict}
	ErrForbidden   = &Error{Code: CodeForbidden}
	ErrRateLimited = &Error{Code: CodeRateLimited}
)

// OTP errors
var (
	ErrOTPNotFound    = NewError(CodeNotFound, "no pending code, please request a new one", nil)
	ErrOTPExpired     = NewError(CodeValidation, "code has expired", nil)
	ErrOTPInvalid     = NewError(CodeValidation, "wrong code", nil)
	ErrOTPMalformed   = NewError(CodeValidation, "code must be 6 digits", nil)
	ErrOTPMaxAttempts = NewError(CodeRateLimited, "too many attempts, please request a new code", nil)
)

// Identity errors
var (
	ErrUserNotFound        = NewError(CodeNotFound, "user not found", nil)
	ErrPhoneNotRegistered  = NewError(CodeNotFound, "phone number is not registered", nil)
	ErrEmailNotRegistered  = NewError(CodeNotFound, "email is not registered", nil)
	ErrPhoneTaken          = NewError(CodeConflict, "phone number is already registered", nil)
	ErrEmailTaken          = NewError(CodeConflict, "email is already registered", nil)
	ErrPhoneInvalid        = NewError(CodeValidation, "invalid phone number", nil)
	ErrEmailInvalid        = NewError(CodeValidation, "invalid email address", nil)
	ErrEmailRequired       = NewError(CodeValidation, "email is required", nil)
	ErrContactRequired     = NewError(CodeValidation, "phone number or email is required", nil)
	ErrPurposeInvalid      = NewError(CodeValidation, "unknown verification purpose", nil)
	ErrPasswordTooShort    = NewError(CodeValidation, "password is too short", nil)
	ErrPasswordTooLong     = NewError(CodeValidation, "password must be at most 72 bytes", nil)
	ErrPasswordMismatch    = NewError(CodeValidation, "current password is incorrect", nil)
	ErrPasswordUnchanged   = NewError(CodeValidation, "new password must differ from the current one", nil)
	ErrVerificationMissing = NewError(CodeForbidden, "complete phone verification first", nil)
)

// Reset token errors
var (
	ErrResetTokenInvalid = NewError(CodeValidation, "reset token is invalid or has already been used", nil)
	ErrResetTokenExpired = NewError(CodeValidation, "reset token has expired", nil)
	ErrResetCodeRoute    = NewError(CodeValidation, "password reset codes are verified through the reset endpoint", nil)
)

// Contact change errors
var (
	ErrNoContactChange     = NewError(CodeValidation, "nothing to change", nil)
	ErrContactFlowNotFound = NewError(CodeNotFound, "no contact change in progress", nil)
	ErrContactNotVerified  = NewError(CodeForbidden, "all changed contacts must be verified first", nil)
	ErrContactFlowStep     = NewError(CodeValidation, "contact change is not waiting for a code", nil)

	// ErrContactStepSpent wraps failures raised after the current step's
	// code was consumed. Such a flow cannot be resumed and must restart.
	ErrContactStepSpent = errors.New("contact change step already consumed")
)

// Gate and auth errors
var (
	ErrTooManyRequests = NewError(CodeRateLimited, "too many requests, please try again later", nil)
	ErrUnavailable     = NewError(CodeInternal, "service temporarily unavailable, please try again later", nil)
	ErrUnauthorized    = NewError(CodeUnauthorized, "authentication required", nil)
	ErrTokenInvalid    = NewError(CodeUnauthorized, "invalid token", nil)
	ErrTokenExpired    = NewError(CodeUnauthorized, "token has expired", nil)
	ErrTokenMalformed  = NewError(CodeUnauthorized, "malformed token", nil)
)
