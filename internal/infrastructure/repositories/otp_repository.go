package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"gorm.io/gorm"
)

// replaceRetries bounds retries when a concurrent issuer wins the pending index
const replaceRetries = 3

// OTPRepositoryImpl implements domain.OTPRepository using GORM
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// ReplacePending implements domain.OTPRepository
func (r *OTPRepositoryImpl) ReplacePending(ctx context.Context, record *domain.OTPRecord) error {
	var lastErr error
	for i := 0; i < replaceRetries; i++ {
		dbRecord := otpToDB(record)
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("target = ? AND purpose = ? AND verified = ?", record.Target, string(record.Purpose), false).
				Delete(&DBOTPRecord{}).Error; err != nil {
				return err
			}
			return tx.Create(dbRecord).Error
		})
		if err == nil {
			record.ID = dbRecord.ID
			record.CreatedAt = dbRecord.CreatedAt
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to replace pending otp: %w", err)
		}
		lastErr = err
	}
	return fmt.Errorf("failed to replace pending otp after %d attempts: %w", replaceRetries, lastErr)
}

// FindLatestPending implements domain.OTPRepository
func (r *OTPRepositoryImpl) FindLatestPending(ctx context.Context, target string, purpose domain.OTPPurpose) (*domain.OTPRecord, error) {
	var dbRecord DBOTPRecord
	err := r.db.WithContext(ctx).
		Where("target = ? AND purpose = ? AND verified = ?", target, string(purpose), false).
		Order("created_at DESC, id DESC").
		First(&dbRecord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return otpToDomain(&dbRecord), nil
}

// IncrementAttempts implements domain.OTPRepository
func (r *OTPRepositoryImpl) IncrementAttempts(ctx context.Context, id uint, max int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&DBOTPRecord{}).
		Where("id = ? AND verified = ? AND attempts < ?", id, false, max).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkVerified implements domain.OTPRepository
func (r *OTPRepositoryImpl) MarkVerified(ctx context.Context, id uint, max int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&DBOTPRecord{}).
		Where("id = ? AND verified = ? AND attempts < ?", id, false, max).
		UpdateColumn("verified", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindVerifiedSince implements domain.OTPRepository
func (r *OTPRepositoryImpl) FindVerifiedSince(ctx context.Context, target string, purpose domain.OTPPurpose, since time.Time) (*domain.OTPRecord, error) {
	var dbRecord DBOTPRecord
	err := r.db.WithContext(ctx).
		Where("target = ? AND purpose = ? AND verified = ? AND created_at >= ?", target, string(purpose), true, since).
		Order("created_at DESC, id DESC").
		First(&dbRecord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return otpToDomain(&dbRecord), nil
}

// DeleteVerified implements domain.OTPRepository
func (r *OTPRepositoryImpl) DeleteVerified(ctx context.Context, target string, purpose domain.OTPPurpose) error {
	return r.db.WithContext(ctx).
		Where("target = ? AND purpose = ? AND verified = ?", target, string(purpose), true).
		Delete(&DBOTPRecord{}).Error
}

func otpToDB(record *domain.OTPRecord) *DBOTPRecord {
	return &DBOTPRecord{
		Target:    record.Target,
		Purpose:   string(record.Purpose),
		Channel:   string(record.Channel),
		Code:      record.Code,
		ExpiresAt: record.ExpiresAt,
		Attempts:  record.Attempts,
		Verified:  record.Verified,
		CreatedAt: record.CreatedAt,
	}
}

func otpToDomain(dbRecord *DBOTPRecord) *domain.OTPRecord {
	return &domain.OTPRecord{
		ID:        dbRecord.ID,
		Target:    dbRecord.Target,
		Purpose:   domain.OTPPurpose(dbRecord.Purpose),
		Channel:   domain.Channel(dbRecord.Channel),
		Code:      dbRecord.Code,
		ExpiresAt: dbRecord.ExpiresAt,
		Attempts:  dbRecord.Attempts,
		Verified:  dbRecord.Verified,
		CreatedAt: dbRecord.CreatedAt,
	}
}
