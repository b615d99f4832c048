package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

const (
	codeLength = 6
	codeMin    = 100000
	codeSpan   = 900000
)

// OTPConfig holds issuance and verification limits
type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

// OTPServiceImpl implements domain.OTPService on a persistent OTP store
type OTPServiceImpl struct {
	otpRepo         domain.OTPRepository
	userRepo        domain.UserRepository
	notificationSvc domain.NotificationService
	config          OTPConfig
	logger          *zap.Logger
	now             func() time.Time
}

// NewOTPService creates a new OTP service
func NewOTPService(otpRepo domain.OTPRepository, userRepo domain.UserRepository, notificationSvc domain.NotificationService, config OTPConfig, logger *zap.Logger) *OTPServiceImpl {
	return &OTPServiceImpl{
		otpRepo:         otpRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		config:          config,
		logger:          logger.Named("otp"),
		now:             time.Now,
	}
}

// Issue implements domain.OTPService
func (s *OTPServiceImpl) Issue(ctx context.Context, req domain.OTPIssueRequest) (*domain.OTPIssueResult, error) {
	if req.Target == "" {
		return nil, domain.ErrContactRequired
	}
	channel := req.Channel
	if channel == "" {
		channel = domain.ChannelSMS
	}

	if err := s.checkIssuePreconditions(ctx, req); err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	now := s.now()
	record := &domain.OTPRecord{
		Target:    req.Target,
		Purpose:   req.Purpose,
		Channel:   channel,
		Code:      code,
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}
	if err := s.otpRepo.ReplacePending(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store OTP: %w", err)
	}

	s.dispatch(req, channel, code)

	return &domain.OTPIssueResult{
		Target:    req.Target,
		Channel:   channel,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *OTPServiceImpl) checkIssuePreconditions(ctx context.Context, req domain.OTPIssueRequest) error {
	switch req.Purpose {
	case domain.PurposeRegister:
		if req.Email == "" {
			return domain.ErrEmailRequired
		}
		existing, err := s.userRepo.FindByPhoneOrEmail(ctx, req.Target, req.Email)
		if err == nil {
			if existing.Phone == req.Target {
				return domain.ErrPhoneTaken
			}
			return domain.ErrEmailTaken
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
	case domain.PurposeResetPassword:
		if _, err := s.userRepo.FindByPhone(ctx, req.Target); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrPhoneNotRegistered
			}
			return fmt.Errorf("failed to look up user: %w", err)
		}
	case domain.PurposeUpdateContact:
	default:
		return domain.ErrPurposeInvalid
	}
	return nil
}

// dispatch hands the code to the transport. The code is already issued, so
// delivery failures are only logged.
func (s *OTPServiceImpl) dispatch(req domain.OTPIssueRequest, channel domain.Channel, code string) {
	minutes := int(s.config.TTL.Minutes())
	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, minutes)

	var err error
	if channel == domain.ChannelEmail {
		to := req.Email
		if to == "" {
			to = req.Target
		}
		err = s.notificationSvc.SendEmail(to, "Your verification code", message)
	} else {
		err = s.notificationSvc.SendSMS(req.Target, message)
	}
	if err != nil {
		s.logger.Warn("otp dispatch failed",
			zap.String("purpose", string(req.Purpose)),
			zap.String("channel", string(channel)),
			zap.Error(err),
		)
	}
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, target, code string, purpose domain.OTPPurpose) error {
	if !isCode(code) {
		return domain.ErrOTPMalformed
	}

	record, err := s.otpRepo.FindLatestPending(ctx, target, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return domain.ErrOTPNotFound
		}
		return fmt.Errorf("failed to load OTP: %w", err)
	}

	if record.Expired(s.now()) {
		return domain.ErrOTPExpired
	}
	if record.Attempts >= s.config.MaxAttempts {
		return domain.ErrOTPMaxAttempts
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		counted, err := s.otpRepo.IncrementAttempts(ctx, record.ID, s.config.MaxAttempts)
		if err != nil {
			return fmt.Errorf("failed to record OTP attempt: %w", err)
		}
		if !counted {
			return domain.ErrOTPMaxAttempts
		}
		return domain.ErrOTPInvalid
	}

	won, err := s.otpRepo.MarkVerified(ctx, record.ID, s.config.MaxAttempts)
	if err != nil {
		return fmt.Errorf("failed to mark OTP verified: %w", err)
	}
	if !won {
		// a concurrent request consumed the record first
		return domain.ErrOTPNotFound
	}
	return nil
}

// generateCode returns a uniform code in [100000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

func isCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
