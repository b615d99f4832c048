package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

// ContactChangeConfig holds contact-change settings
type ContactChangeConfig struct {
	// FreshnessWindow bounds how old a verified code may be at commit
	FreshnessWindow time.Duration
}

// ContactChangeServiceImpl implements domain.ContactChangeService.
//
// Transitions:
//
//	FORM      -> phone and email changed -> both codes sent -> OTP_PHONE
//	FORM      -> only phone changed      -> phone code sent -> OTP_PHONE
//	FORM      -> only email changed      -> email code sent -> OTP_EMAIL
//	OTP_PHONE -> verified, email pending -> email code live -> OTP_EMAIL
//	OTP_PHONE -> verified, otherwise     -> COMMITTED
//	OTP_EMAIL -> verified                -> COMMITTED
//
// The user row is written only on the way to COMMITTED.
type ContactChangeServiceImpl struct {
	userRepo domain.UserRepository
	otpRepo  domain.OTPRepository
	otpSvc   domain.OTPService
	config   ContactChangeConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewContactChangeService creates a new contact change service
func NewContactChangeService(userRepo domain.UserRepository, otpRepo domain.OTPRepository, otpSvc domain.OTPService, config ContactChangeConfig, logger *zap.Logger) *ContactChangeServiceImpl {
	return &ContactChangeServiceImpl{
		userRepo: userRepo,
		otpRepo:  otpRepo,
		otpSvc:   otpSvc,
		config:   config,
		logger:   logger.Named("contact_change"),
		now:      time.Now,
	}
}

// Start implements domain.ContactChangeService. req must already be
// normalized; empty fields mean unchanged.
func (s *ContactChangeServiceImpl) Start(ctx context.Context, userID uint, req domain.ContactChangeRequest) (*domain.ContactChangeFlow, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	phoneChanged := req.Phone != "" && req.Phone != user.Phone
	emailChanged := req.Email != "" && req.Email != strings.ToLower(user.Email)
	if !phoneChanged && !emailChanged {
		return nil, domain.ErrNoContactChange
	}

	flow := &domain.ContactChangeFlow{
		UserID:       userID,
		Step:         domain.StepForm,
		PhonePending: phoneChanged,
		EmailPending: emailChanged,
		StartedAt:    s.now(),
	}
	if phoneChanged {
		flow.NewPhone = req.Phone
	}
	if emailChanged {
		flow.NewEmail = req.Email
	}

	if err := s.checkAvailable(ctx, userID, flow.NewPhone, flow.NewEmail); err != nil {
		return nil, err
	}

	if phoneChanged {
		if err := s.issuePhone(ctx, flow); err != nil {
			return nil, err
		}
	}
	if emailChanged {
		if err := s.issueEmail(ctx, flow); err != nil {
			return nil, err
		}
	}

	if phoneChanged {
		flow.Step = domain.StepOTPPhone
	} else {
		flow.Step = domain.StepOTPEmail
	}
	return flow, nil
}

// Verify implements domain.ContactChangeService. A wrong code leaves flow
// where it was. Failures after the code was accepted wrap
// domain.ErrContactStepSpent. On success a new flow value is returned.
func (s *ContactChangeServiceImpl) Verify(ctx context.Context, flow *domain.ContactChangeFlow, code string) (*domain.ContactChangeFlow, error) {
	if flow == nil {
		return nil, domain.ErrContactFlowNotFound
	}
	next := *flow

	switch flow.Step {
	case domain.StepOTPPhone:
		if err := s.otpSvc.Verify(ctx, flow.NewPhone, code, domain.PurposeUpdateContact); err != nil {
			return nil, err
		}
		next.PhoneVerified = true
		if next.EmailPending && !next.EmailVerified {
			if err := s.resumeEmail(ctx, &next); err != nil {
				return nil, spent(err)
			}
			next.Step = domain.StepOTPEmail
			return &next, nil
		}
	case domain.StepOTPEmail:
		if err := s.otpSvc.Verify(ctx, flow.NewEmail, code, domain.PurposeUpdateContact); err != nil {
			return nil, err
		}
		next.EmailVerified = true
	default:
		return nil, domain.ErrContactFlowStep
	}

	if err := s.commit(ctx, &next); err != nil {
		return nil, spent(err)
	}
	return &next, nil
}

func spent(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrContactStepSpent, err)
}

func (s *ContactChangeServiceImpl) issuePhone(ctx context.Context, flow *domain.ContactChangeFlow) error {
	_, err := s.otpSvc.Issue(ctx, domain.OTPIssueRequest{
		Target:  flow.NewPhone,
		Purpose: domain.PurposeUpdateContact,
		Channel: domain.ChannelSMS,
	})
	return err
}

func (s *ContactChangeServiceImpl) issueEmail(ctx context.Context, flow *domain.ContactChangeFlow) error {
	_, err := s.otpSvc.Issue(ctx, domain.OTPIssueRequest{
		Target:  flow.NewEmail,
		Email:   flow.NewEmail,
		Purpose: domain.PurposeUpdateContact,
		Channel: domain.ChannelEmail,
	})
	return err
}

// resumeEmail keeps the e-mail code sent at start when it is still usable
// and sends a new one otherwise.
func (s *ContactChangeServiceImpl) resumeEmail(ctx context.Context, flow *domain.ContactChangeFlow) error {
	record, err := s.otpRepo.FindLatestPending(ctx, flow.NewEmail, domain.PurposeUpdateContact)
	switch {
	case err == nil && !record.Expired(s.now()):
		return nil
	case err == nil, errors.Is(err, domain.ErrOTPNotFound):
		return s.issueEmail(ctx, flow)
	default:
		return fmt.Errorf("failed to load e-mail code: %w", err)
	}
}

func (s *ContactChangeServiceImpl) commit(ctx context.Context, flow *domain.ContactChangeFlow) error {
	if !flow.Done() {
		return domain.ErrContactNotVerified
	}

	since := s.now().Add(-s.config.FreshnessWindow)
	if flow.PhonePending {
		if err := s.requireVerified(ctx, flow.NewPhone, since); err != nil {
			return err
		}
	}
	if flow.EmailPending {
		if err := s.requireVerified(ctx, flow.NewEmail, since); err != nil {
			return err
		}
	}

	user, err := s.userRepo.FindByID(ctx, flow.UserID)
	if err != nil {
		return err
	}
	if err := s.checkAvailable(ctx, flow.UserID, flow.NewPhone, flow.NewEmail); err != nil {
		return err
	}

	phone, email := user.Phone, user.Email
	if flow.PhonePending {
		phone = flow.NewPhone
	}
	if flow.EmailPending {
		email = flow.NewEmail
	}
	if err := s.userRepo.UpdateContact(ctx, flow.UserID, phone, email); err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update contact: %w", err)
	}

	for _, target := range []string{flow.NewPhone, flow.NewEmail} {
		if target == "" {
			continue
		}
		if err := s.otpRepo.DeleteVerified(ctx, target, domain.PurposeUpdateContact); err != nil {
			s.logger.Warn("failed to clean up verified contact codes", zap.Uint("user_id", flow.UserID), zap.Error(err))
		}
	}

	flow.Step = domain.StepCommitted
	return nil
}

func (s *ContactChangeServiceImpl) requireVerified(ctx context.Context, target string, since time.Time) error {
	if _, err := s.otpRepo.FindVerifiedSince(ctx, target, domain.PurposeUpdateContact, since); err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return domain.ErrContactNotVerified
		}
		return fmt.Errorf("failed to check contact verification: %w", err)
	}
	return nil
}

// checkAvailable fails when another user already owns phone or email
func (s *ContactChangeServiceImpl) checkAvailable(ctx context.Context, userID uint, phone, email string) error {
	if phone != "" {
		owner, err := s.userRepo.FindByPhone(ctx, phone)
		if err == nil && owner.ID != userID {
			return domain.ErrPhoneTaken
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("failed to check phone owner: %w", err)
		}
	}
	if email != "" {
		owner, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && owner.ID != userID {
			return domain.ErrEmailTaken
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("failed to check email owner: %w", err)
		}
	}
	return nil
}
