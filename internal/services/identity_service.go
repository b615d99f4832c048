package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

// bcrypt ignores everything past 72 bytes
const maxPasswordBytes = 72

// IdentityConfig holds the gate budgets and password policy
type IdentityConfig struct {
	RateLimits        map[string]domain.RateLimitPolicy
	PasswordMinLength int
}

// IdentityDeps groups the collaborators of the identity service
type IdentityDeps struct {
	Limiter      domain.RateLimiter
	OTP          domain.OTPService
	ResetTokens  domain.ResetTokenService
	Registration domain.RegistrationService
	Contact      domain.ContactChangeService
	ContactFlows domain.ContactFlowRepository
	Users        domain.UserRepository
	Passwords    domain.PasswordService
	Normalizer   *ContactNormalizer
	Audit        domain.AuditLogger
}

// IdentityServiceImpl implements domain.IdentityService. Every rate-limited
// operation passes the gate before reading or writing anything else.
type IdentityServiceImpl struct {
	deps   IdentityDeps
	config IdentityConfig
	logger *zap.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(deps IdentityDeps, config IdentityConfig, logger *zap.Logger) *IdentityServiceImpl {
	if config.PasswordMinLength <= 0 {
		config.PasswordMinLength = 8
	}
	return &IdentityServiceImpl{
		deps:   deps,
		config: config,
		logger: logger.Named("identity"),
	}
}

// gate checks the origin budget for action
func (s *IdentityServiceImpl) gate(ctx context.Context, client *domain.ClientContext, action string) error {
	policy, ok := s.config.RateLimits[action]
	if !ok {
		s.logger.Error("no rate limit configured", zap.String("action", action))
		return domain.NewError(domain.CodeInternal, domain.ErrUnavailable.Message, fmt.Errorf("no rate limit for %s", action))
	}

	ip := "unknown"
	if client != nil && client.IPAddress != "" {
		ip = client.IPAddress
	}

	decision, err := s.deps.Limiter.Check(ctx, action+":"+ip, policy)
	if err != nil {
		s.logger.Error("rate limiter unavailable", zap.String("action", action), zap.Error(err))
		return domain.NewError(domain.CodeInternal, domain.ErrUnavailable.Message, err)
	}
	if !decision.Allowed {
		s.audit(ctx, domain.NewAuditEvent(domain.RateLimitedEvent, 0).
			WithClientContext(client).
			WithMetadata("action", action).
			WithError(domain.ErrTooManyRequests))
		limited := domain.NewError(domain.CodeRateLimited, domain.ErrTooManyRequests.Message, nil)
		limited.RetryAfter = decision.RetryAfter
		return limited
	}
	return nil
}

// SendOTP implements domain.IdentityService
func (s *IdentityServiceImpl) SendOTP(ctx context.Context, client *domain.ClientContext, phone, email string, purpose domain.OTPPurpose) (*domain.OTPIssueResult, error) {
	if err := s.gate(ctx, client, domain.ActionOTPSend); err != nil {
		return nil, err
	}

	target, err := s.deps.Normalizer.Phone(phone)
	if err != nil {
		return nil, err
	}
	email, err = s.deps.Normalizer.Email(email)
	if err != nil {
		return nil, err
	}

	result, err := s.deps.OTP.Issue(ctx, domain.OTPIssueRequest{
		Target:  target,
		Email:   email,
		Purpose: purpose,
		Channel: domain.ChannelSMS,
	})
	event := domain.NewAuditEvent(domain.OTPIssuedEvent, 0).
		WithPhone(target).
		WithClientContext(client).
		WithMetadata("purpose", string(purpose))
	if err != nil {
		s.audit(ctx, event.WithError(err))
		return nil, err
	}
	s.audit(ctx, event)
	return result, nil
}

// VerifyOTP implements domain.IdentityService
func (s *IdentityServiceImpl) VerifyOTP(ctx context.Context, client *domain.ClientContext, phone, code string, purpose domain.OTPPurpose) error {
	if err := s.gate(ctx, client, domain.ActionOTPVerify); err != nil {
		return err
	}

	// reset codes are only redeemable for a reset token
	if purpose == domain.PurposeResetPassword {
		return domain.ErrResetCodeRoute
	}

	target, err := s.deps.Normalizer.Phone(phone)
	if err != nil {
		return err
	}
	return s.verify(ctx, client, target, code, purpose)
}

func (s *IdentityServiceImpl) verify(ctx context.Context, client *domain.ClientContext, target, code string, purpose domain.OTPPurpose) error {
	err := s.deps.OTP.Verify(ctx, target, code, purpose)
	if err != nil {
		s.audit(ctx, domain.NewAuditEvent(domain.OTPVerifyFailedEvent, 0).
			WithPhone(target).
			WithClientContext(client).
			WithMetadata("purpose", string(purpose)).
			WithError(err))
		return err
	}
	s.audit(ctx, domain.NewAuditEvent(domain.OTPVerifiedEvent, 0).
		WithPhone(target).
		WithClientContext(client).
		WithMetadata("purpose", string(purpose)))
	return nil
}

// Register implements domain.IdentityService
func (s *IdentityServiceImpl) Register(ctx context.Context, client *domain.ClientContext, req domain.RegistrationRequest) (uint, error) {
	if err := s.gate(ctx, client, domain.ActionRegister); err != nil {
		return 0, err
	}

	phone, err := s.deps.Normalizer.Phone(req.Phone)
	if err != nil {
		return 0, err
	}
	email, err := s.deps.Normalizer.Email(req.Email)
	if err != nil {
		return 0, err
	}
	if email == "" {
		return 0, domain.ErrEmailRequired
	}
	if err := s.checkPassword(req.Password); err != nil {
		return 0, err
	}

	req.Phone, req.Email = phone, email
	userID, err := s.deps.Registration.Register(ctx, req)
	if err != nil {
		s.audit(ctx, domain.NewAuditEvent(domain.UserRegisteredEvent, 0).
			WithPhone(phone).WithEmail(email).WithClientContext(client).WithError(err))
		return 0, err
	}
	s.audit(ctx, domain.NewAuditEvent(domain.UserRegisteredEvent, userID).
		WithPhone(phone).WithEmail(email).WithClientContext(client))
	return userID, nil
}

// ChangePassword implements domain.IdentityService
func (s *IdentityServiceImpl) ChangePassword(ctx context.Context, client *domain.ClientContext, userID uint, currentPassword, newPassword string) error {
	if err := s.gate(ctx, client, domain.ActionChangePassword); err != nil {
		return err
	}

	user, err := s.deps.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.deps.Passwords.Verify(user.PasswordHash, currentPassword) {
		s.audit(ctx, domain.NewAuditEvent(domain.PasswordChangedEvent, userID).
			WithClientContext(client).WithError(domain.ErrPasswordMismatch))
		return domain.ErrPasswordMismatch
	}
	if err := s.checkPassword(newPassword); err != nil {
		return err
	}
	if newPassword == currentPassword {
		return domain.ErrPasswordUnchanged
	}

	hashed, err := s.deps.Passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.deps.Users.UpdatePassword(ctx, userID, hashed); err != nil {
		return err
	}

	s.audit(ctx, domain.NewAuditEvent(domain.PasswordChangedEvent, userID).WithClientContext(client))
	return nil
}

// ResetPasswordSend implements domain.IdentityService. With only an e-mail
// the code is bound to the owner's phone and delivered by e-mail.
func (s *IdentityServiceImpl) ResetPasswordSend(ctx context.Context, client *domain.ClientContext, phone, email string) (*domain.ResetSendResult, error) {
	if err := s.gate(ctx, client, domain.ActionResetPassword); err != nil {
		return nil, err
	}

	req := domain.OTPIssueRequest{Purpose: domain.PurposeResetPassword, Channel: domain.ChannelSMS}
	switch {
	case phone != "":
		target, err := s.deps.Normalizer.Phone(phone)
		if err != nil {
			return nil, err
		}
		req.Target = target
	case email != "":
		user, err := s.userByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		req.Target = user.Phone
		req.Email = user.Email
		req.Channel = domain.ChannelEmail
	default:
		return nil, domain.ErrContactRequired
	}

	event := domain.NewAuditEvent(domain.OTPIssuedEvent, 0).
		WithPhone(req.Target).
		WithClientContext(client).
		WithMetadata("purpose", string(req.Purpose)).
		WithMetadata("channel", string(req.Channel))
	if _, err := s.deps.OTP.Issue(ctx, req); err != nil {
		s.audit(ctx, event.WithError(err))
		return nil, err
	}
	s.audit(ctx, event)
	return &domain.ResetSendResult{Method: req.Channel}, nil
}

// ResetPasswordVerify implements domain.IdentityService
func (s *IdentityServiceImpl) ResetPasswordVerify(ctx context.Context, client *domain.ClientContext, phone, email, code string) (*domain.ResetVerifyResult, error) {
	if err := s.gate(ctx, client, domain.ActionOTPVerify); err != nil {
		return nil, err
	}

	var target string
	switch {
	case phone != "":
		normalized, err := s.deps.Normalizer.Phone(phone)
		if err != nil {
			return nil, err
		}
		target = normalized
	case email != "":
		user, err := s.userByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		target = user.Phone
	default:
		return nil, domain.ErrContactRequired
	}

	if err := s.verify(ctx, client, target, code, domain.PurposeResetPassword); err != nil {
		return nil, err
	}

	token, err := s.deps.ResetTokens.IssueAfterVerification(ctx, target)
	if err != nil {
		return nil, err
	}
	return &domain.ResetVerifyResult{Verified: true, ResetToken: token}, nil
}

// ResetPassword implements domain.IdentityService
func (s *IdentityServiceImpl) ResetPassword(ctx context.Context, client *domain.ClientContext, phone, password, resetToken string) error {
	if err := s.gate(ctx, client, domain.ActionResetPassword); err != nil {
		return err
	}

	target, err := s.deps.Normalizer.Phone(phone)
	if err != nil {
		return err
	}
	if err := s.checkPassword(password); err != nil {
		return err
	}

	event := domain.NewAuditEvent(domain.PasswordResetEvent, 0).WithPhone(target).WithClientContext(client)
	if err := s.deps.ResetTokens.Redeem(ctx, target, password, resetToken); err != nil {
		s.audit(ctx, event.WithError(err))
		return err
	}
	s.audit(ctx, event)
	return nil
}

// StartContactChange implements domain.IdentityService. A flow already in
// progress is replaced.
func (s *IdentityServiceImpl) StartContactChange(ctx context.Context, client *domain.ClientContext, userID uint, req domain.ContactChangeRequest) (*domain.ContactChangeFlow, error) {
	if err := s.gate(ctx, client, domain.ActionContactChange); err != nil {
		return nil, err
	}

	if req.Phone != "" {
		phone, err := s.deps.Normalizer.Phone(req.Phone)
		if err != nil {
			return nil, err
		}
		req.Phone = phone
	}
	email, err := s.deps.Normalizer.Email(req.Email)
	if err != nil {
		return nil, err
	}
	req.Email = email

	flow, err := s.deps.Contact.Start(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if err := s.deps.ContactFlows.Save(ctx, flow); err != nil {
		return nil, err
	}
	return flow, nil
}

// VerifyContactChange implements domain.IdentityService
func (s *IdentityServiceImpl) VerifyContactChange(ctx context.Context, client *domain.ClientContext, userID uint, code string) (*domain.ContactChangeFlow, error) {
	if err := s.gate(ctx, client, domain.ActionOTPVerify); err != nil {
		return nil, err
	}

	flow, err := s.deps.ContactFlows.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, err := s.deps.Contact.Verify(ctx, flow, code)
	if err != nil {
		s.audit(ctx, domain.NewAuditEvent(domain.OTPVerifyFailedEvent, userID).
			WithClientContext(client).
			WithMetadata("purpose", string(domain.PurposeUpdateContact)).
			WithMetadata("step", string(flow.Step)).
			WithError(err))
		if errors.Is(err, domain.ErrContactStepSpent) {
			if derr := s.deps.ContactFlows.Delete(ctx, userID); derr != nil {
				s.logger.Warn("failed to drop spent contact flow", zap.Uint("user_id", userID), zap.Error(derr))
			}
		}
		return nil, err
	}

	if next.Step == domain.StepCommitted {
		if err := s.deps.ContactFlows.Delete(ctx, userID); err != nil {
			s.logger.Warn("failed to drop committed contact flow", zap.Uint("user_id", userID), zap.Error(err))
		}
		s.audit(ctx, domain.NewAuditEvent(domain.ContactChangedEvent, userID).
			WithPhone(next.NewPhone).
			WithEmail(next.NewEmail).
			WithClientContext(client))
		return next, nil
	}

	if err := s.deps.ContactFlows.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// GetContactChange implements domain.IdentityService
func (s *IdentityServiceImpl) GetContactChange(ctx context.Context, userID uint) (*domain.ContactChangeFlow, error) {
	return s.deps.ContactFlows.Find(ctx, userID)
}

// CancelContactChange implements domain.IdentityService
func (s *IdentityServiceImpl) CancelContactChange(ctx context.Context, userID uint) error {
	return s.deps.ContactFlows.Delete(ctx, userID)
}

func (s *IdentityServiceImpl) userByEmail(ctx context.Context, raw string) (*domain.User, error) {
	email, err := s.deps.Normalizer.Email(raw)
	if err != nil {
		return nil, err
	}
	user, err := s.deps.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrEmailNotRegistered
		}
		return nil, err
	}
	return user, nil
}

func (s *IdentityServiceImpl) checkPassword(password string) error {
	if len(password) < s.config.PasswordMinLength {
		return domain.ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return domain.ErrPasswordTooLong
	}
	return nil
}

func (s *IdentityServiceImpl) audit(ctx context.Context, event *domain.AuditEvent) {
	if s.deps.Audit != nil {
		s.deps.Audit.LogEvent(ctx, event)
	}
}
