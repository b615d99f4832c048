package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"gorm.io/gorm"
)

// ResetTokenRepositoryImpl implements domain.ResetTokenRepository using GORM
type ResetTokenRepositoryImpl struct {
	db *gorm.DB
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository(db *gorm.DB) domain.ResetTokenRepository {
	return &ResetTokenRepositoryImpl{db: db}
}

// Replace implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) Replace(ctx context.Context, token *domain.PasswordResetToken) error {
	dbToken := &DBResetToken{
		Phone:     token.Phone,
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
		Used:      false,
		CreatedAt: token.CreatedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("phone = ? AND used = ?", token.Phone, false).Delete(&DBResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(dbToken).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	token.ID = dbToken.ID
	token.CreatedAt = dbToken.CreatedAt
	return nil
}

// FindUnused implements domain.ResetTokenRepository
func (r *ResetTokenRepositoryImpl) FindUnused(ctx context.Context, phone, tokenHash string) (*domain.PasswordResetToken, error) {
	var dbToken DBResetToken
	err := r.db.WithContext(ctx).
		Where("phone = ? AND token_hash = ? AND used = ?", phone, tokenHash, false).
		First(&dbToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, err
	}
	return &domain.PasswordResetToken{
		ID:        dbToken.ID,
		Phone:     dbToken.Phone,
		TokenHash: dbToken.TokenHash,
		ExpiresAt: dbToken.ExpiresAt,
		Used:      dbToken.Used,
		CreatedAt: dbToken.CreatedAt,
	}, nil
}

// Redeem implements domain.ResetTokenRepository. The conditional update on
// used makes a concurrent second redemption affect zero rows and roll back.
func (r *ResetTokenRepositoryImpl) Redeem(ctx context.Context, tokenID uint, phone, passwordHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DBResetToken{}).
			Where("id = ? AND phone = ? AND used = ?", tokenID, phone, false).
			UpdateColumn("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrResetTokenInvalid
		}

		res = tx.Model(&DBUser{}).
			Where("phone = ?", phone).
			Updates(map[string]interface{}{"password": passwordHash, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return nil
	})
}
