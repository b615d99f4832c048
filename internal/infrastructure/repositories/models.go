package repositories

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DBUser represents the database model for User (with GORM tags)
type DBUser struct {
	ID           uint    `gorm:"primaryKey"`
	Phone        string  `gorm:"uniqueIndex;size:32;not null"`
	Email        *string `gorm:"uniqueIndex;size:255"`
	PasswordHash string  `gorm:"column:password;not null"`
	MemberNumber string  `gorm:"uniqueIndex;size:32;not null"`
	Nickname     string  `gorm:"size:64"`
	Title        string  `gorm:"size:32"`
	Role         string  `gorm:"index;size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// DBOTPRecord is an issued code. The partial unique index keeps at most one
// unconsumed record per (target, purpose).
type DBOTPRecord struct {
	ID        uint      `gorm:"primaryKey"`
	Target    string    `gorm:"size:255;not null;index:idx_otp_target_purpose,priority:1;uniqueIndex:idx_otp_pending,priority:1,where:verified = false"`
	Purpose   string    `gorm:"size:32;not null;index:idx_otp_target_purpose,priority:2;uniqueIndex:idx_otp_pending,priority:2,where:verified = false"`
	Channel   string    `gorm:"size:16;not null"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Attempts  int       `gorm:"not null;default:0"`
	Verified  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"index"`
}

func (DBOTPRecord) TableName() string {
	return "otp_records"
}

// DBResetToken stores the SHA-256 of a reset token, never the token itself
type DBResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	Phone     string    `gorm:"size:32;not null;index"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (DBResetToken) TableName() string {
	return "password_reset_tokens"
}

// Migrate creates or updates the identity tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&DBUser{}, &DBOTPRecord{}, &DBResetToken{}); err != nil {
		return fmt.Errorf("failed to migrate identity tables: %w", err)
	}
	return nil
}
