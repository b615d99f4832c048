package services

import (
	"context"
	"testing"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/repositories"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testPhone = "+85291234567"
	testEmail = "alice@example.com"
)

// testStore bundles real repositories over an in-memory database
type testStore struct {
	db       *gorm.DB
	users    domain.UserRepository
	otps     domain.OTPRepository
	tokens   domain.ResetTokenRepository
	notifier *mocks.MockNotificationService
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))

	return &testStore{
		db:       db,
		users:    repositories.NewUserRepository(db),
		otps:     repositories.NewOTPRepository(db),
		tokens:   repositories.NewResetTokenRepository(db),
		notifier: mocks.NewMockNotificationService(),
	}
}

func testOTPConfig() OTPConfig {
	return OTPConfig{TTL: 5 * time.Minute, MaxAttempts: 5}
}

func (s *testStore) otpService() *OTPServiceImpl {
	return NewOTPService(s.otps, s.users, s.notifier, testOTPConfig(), zap.NewNop())
}

// createUser inserts a user whose password is "password123"
func (s *testStore) createUser(t *testing.T, phone, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Phone:        phone,
		Email:        email,
		PasswordHash: "hashed_password123",
		MemberNumber: "M-" + phone,
		Role:         "user",
	}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

// pendingCode reads the live code for (target, purpose) straight from the store
func (s *testStore) pendingCode(t *testing.T, target string, purpose domain.OTPPurpose) string {
	t.Helper()

	record, err := s.otps.FindLatestPending(context.Background(), target, purpose)
	require.NoError(t, err)
	return record.Code
}

func (s *testStore) countOTPs(t *testing.T, target string, purpose domain.OTPPurpose) int64 {
	t.Helper()

	var n int64
	require.NoError(t, s.db.Model(&repositories.DBOTPRecord{}).
		Where("target = ? AND purpose = ?", target, string(purpose)).
		Count(&n).Error)
	return n
}

// wrongCode returns a well-formed code different from code
func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
