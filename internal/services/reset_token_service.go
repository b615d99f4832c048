package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

const resetTokenBytes = 32

// ResetTokenConfig holds the lifetime of reset tokens
type ResetTokenConfig struct {
	TTL time.Duration
}

// ResetTokenServiceImpl implements domain.ResetTokenService
type ResetTokenServiceImpl struct {
	tokenRepo   domain.ResetTokenRepository
	otpRepo     domain.OTPRepository
	passwordSvc domain.PasswordService
	config      ResetTokenConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewResetTokenService creates a new reset token service
func NewResetTokenService(tokenRepo domain.ResetTokenRepository, otpRepo domain.OTPRepository, passwordSvc domain.PasswordService, config ResetTokenConfig, logger *zap.Logger) *ResetTokenServiceImpl {
	return &ResetTokenServiceImpl{
		tokenRepo:   tokenRepo,
		otpRepo:     otpRepo,
		passwordSvc: passwordSvc,
		config:      config,
		logger:      logger.Named("reset_token"),
		now:         time.Now,
	}
}

// IssueAfterVerification implements domain.ResetTokenService. It must only
// be called once a RESET_PASSWORD code for phone has been verified.
func (s *ResetTokenServiceImpl) IssueAfterVerification(ctx context.Context, phone string) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := s.now()
	record := &domain.PasswordResetToken{
		Phone:     phone,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.config.TTL),
		CreatedAt: now,
	}
	if err := s.tokenRepo.Replace(ctx, record); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.otpRepo.DeleteVerified(ctx, phone, domain.PurposeResetPassword); err != nil {
		s.logger.Warn("failed to clean up verified reset codes", zap.Error(err))
	}

	return token, nil
}

// Redeem implements domain.ResetTokenService
func (s *ResetTokenServiceImpl) Redeem(ctx context.Context, phone, password, resetToken string) error {
	if resetToken == "" {
		return domain.ErrResetTokenInvalid
	}

	record, err := s.tokenRepo.FindUnused(ctx, phone, hashToken(resetToken))
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return domain.ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to load reset token: %w", err)
	}
	if s.now().After(record.ExpiresAt) {
		return domain.ErrResetTokenExpired
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.tokenRepo.Redeem(ctx, record.ID, phone, hashed); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return err
		}
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
