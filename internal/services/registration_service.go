package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

// RegistrationConfig holds finalization settings
type RegistrationConfig struct {
	// FreshnessWindow bounds how long after issuance a verified REGISTER code
	// still allows finalization.
	FreshnessWindow time.Duration
	DefaultRole     string
}

// RegistrationServiceImpl implements domain.RegistrationService
type RegistrationServiceImpl struct {
	userRepo    domain.UserRepository
	otpRepo     domain.OTPRepository
	passwordSvc domain.PasswordService
	memberGen   domain.MemberNumberGenerator
	config      RegistrationConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(userRepo domain.UserRepository, otpRepo domain.OTPRepository, passwordSvc domain.PasswordService, memberGen domain.MemberNumberGenerator, config RegistrationConfig, logger *zap.Logger) *RegistrationServiceImpl {
	if config.DefaultRole == "" {
		config.DefaultRole = "user"
	}
	return &RegistrationServiceImpl{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		passwordSvc: passwordSvc,
		memberGen:   memberGen,
		config:      config,
		logger:      logger.Named("registration"),
		now:         time.Now,
	}
}

// Register implements domain.RegistrationService
func (s *RegistrationServiceImpl) Register(ctx context.Context, req domain.RegistrationRequest) (uint, error) {
	if req.Email == "" {
		return 0, domain.ErrEmailRequired
	}

	since := s.now().Add(-s.config.FreshnessWindow)
	if _, err := s.otpRepo.FindVerifiedSince(ctx, req.Phone, domain.PurposeRegister, since); err != nil {
		if errors.Is(err, domain.ErrOTPNotFound) {
			return 0, domain.ErrVerificationMissing
		}
		return 0, fmt.Errorf("failed to check phone verification: %w", err)
	}

	existing, err := s.userRepo.FindByPhoneOrEmail(ctx, req.Phone, req.Email)
	if err == nil {
		if existing.Phone == req.Phone {
			return 0, domain.ErrPhoneTaken
		}
		return 0, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return 0, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := s.passwordSvc.Hash(req.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	memberNumber, err := s.memberGen.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate member number: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hashed,
		MemberNumber: memberNumber,
		Nickname:     req.Nickname,
		Title:        req.Title,
		Role:         s.config.DefaultRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.otpRepo.DeleteVerified(ctx, req.Phone, domain.PurposeRegister); err != nil {
		s.logger.Warn("failed to clean up verified registration codes",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return user.ID, nil
}
