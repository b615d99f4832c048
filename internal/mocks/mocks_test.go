package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/mocks"
	"github.com/stretchr/testify/assert"
)

// Defaults documented on each mock are what service tests rely on
func TestMockDefaults(t *testing.T) {
	ctx := context.Background()

	otpSvc := mocks.NewMockOTPService()
	assert.NoError(t, otpSvc.Verify(ctx, "+85291234567", "123456", domain.PurposeRegister))
	assert.True(t, errors.Is(otpSvc.Verify(ctx, "+85291234567", "000000", domain.PurposeRegister), domain.ErrOTPInvalid))
	_, _ = otpSvc.Issue(ctx, domain.OTPIssueRequest{Target: "+85291234567"})
	assert.Len(t, otpSvc.Issued, 1)

	limiter := mocks.NewMockRateLimiter()
	decision, err := limiter.Check(ctx, "otp_send:1.2.3.4", domain.RateLimitPolicy{})
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, []string{"otp_send:1.2.3.4"}, limiter.Keys)

	pwd := mocks.NewMockPasswordService()
	hash, _ := pwd.Hash("secret")
	assert.True(t, pwd.Verify(hash, "secret"))
	assert.False(t, pwd.Verify(hash, "other"))
	assert.False(t, pwd.Verify("secret", "secret"), "plain text is not a hash")

	notifier := mocks.NewMockNotificationService()
	assert.NoError(t, notifier.SendSMS("+85291234567", "code 123456"))
	assert.NoError(t, notifier.SendEmail("a@example.com", "Verification code", "code 654321"))
	assert.Equal(t, []mocks.Delivery{{Channel: domain.ChannelSMS, To: "+85291234567", Body: "code 123456"}}, notifier.Deliveries("+85291234567"))
	assert.Equal(t, "Verification code", notifier.Deliveries("a@example.com")[0].Subject)
	assert.Empty(t, notifier.Deliveries("b@example.com"))

	tokens := mocks.NewMockTokenService()
	claims, err := tokens.ValidateAccessToken("valid_token")
	assert.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	_, err = tokens.ValidateAccessToken("nope")
	assert.Error(t, err)

	gen := mocks.NewMockMemberNumberGenerator()
	first, _ := gen.Next(ctx)
	second, _ := gen.Next(ctx)
	assert.Equal(t, "M0001", first)
	assert.Equal(t, "M0002", second)

	users := mocks.NewMockUserRepository()
	_, err = users.FindByPhoneOrEmail(ctx, "+85291234567", "a@example.com")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	audit := mocks.NewMockAuditLogger()
	audit.LogEvent(ctx, domain.NewAuditEvent(domain.OTPIssuedEvent, 0))
	assert.Len(t, audit.Events(domain.OTPIssuedEvent), 1)
	assert.Empty(t, audit.Events(domain.RateLimitedEvent))
}
