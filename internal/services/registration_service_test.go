package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createRegistrationServiceForTest(s *testStore) *RegistrationServiceImpl {
	return NewRegistrationService(s.users, s.otps, mocks.NewMockPasswordService(), mocks.NewMockMemberNumberGenerator(),
		RegistrationConfig{FreshnessWindow: 30 * time.Minute}, zap.NewNop())
}

// verifyRegisterCode issues and verifies a REGISTER code for phone
func verifyRegisterCode(t *testing.T, s *testStore, phone, email string) {
	t.Helper()

	otp := s.otpService()
	ctx := createTestContext(t)
	_, err := otp.Issue(ctx, domain.OTPIssueRequest{Target: phone, Email: email, Purpose: domain.PurposeRegister})
	require.NoError(t, err)
	require.NoError(t, otp.Verify(ctx, phone, s.pendingCode(t, phone, domain.PurposeRegister), domain.PurposeRegister))
}

func TestRegistrationService_Register(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, s *testStore)
		req         domain.RegistrationRequest
		clock       time.Duration
		expectedErr error
	}{
		{
			name: "verified phone",
			setup: func(t *testing.T, s *testStore) {
				verifyRegisterCode(t, s, testPhone, testEmail)
			},
			req: domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123", Nickname: "Alice"},
		},
		{
			name:        "no verification",
			req:         domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"},
			expectedErr: domain.ErrVerificationMissing,
		},
		{
			name: "pending but unverified code",
			setup: func(t *testing.T, s *testStore) {
				_, err := s.otpService().Issue(createTestContext(t), domain.OTPIssueRequest{
					Target: testPhone, Email: testEmail, Purpose: domain.PurposeRegister,
				})
				require.NoError(t, err)
			},
			req:         domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"},
			expectedErr: domain.ErrVerificationMissing,
		},
		{
			name: "stale verification",
			setup: func(t *testing.T, s *testStore) {
				verifyRegisterCode(t, s, testPhone, testEmail)
			},
			req:         domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"},
			clock:       31 * time.Minute,
			expectedErr: domain.ErrVerificationMissing,
		},
		{
			name: "verification for another phone",
			setup: func(t *testing.T, s *testStore) {
				verifyRegisterCode(t, s, "+85291111111", testEmail)
			},
			req:         domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"},
			expectedErr: domain.ErrVerificationMissing,
		},
		{
			name: "email taken after verification",
			setup: func(t *testing.T, s *testStore) {
				verifyRegisterCode(t, s, testPhone, testEmail)
				s.createUser(t, "+85291111111", testEmail)
			},
			req:         domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"},
			expectedErr: domain.ErrEmailTaken,
		},
		{
			name:        "missing email",
			req:         domain.RegistrationRequest{Phone: testPhone, Password: "password123"},
			expectedErr: domain.ErrEmailRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			if tt.setup != nil {
				tt.setup(t, store)
			}
			svc := createRegistrationServiceForTest(store)
			if tt.clock > 0 {
				svc.now = func() time.Time { return time.Now().Add(tt.clock) }
			}
			ctx := createTestContext(t)

			userID, err := svc.Register(ctx, tt.req)

			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr), "expected %v, got %v", tt.expectedErr, err)
				assert.Zero(t, userID)
				return
			}
			require.NoError(t, err)

			user, err := store.users.FindByID(ctx, userID)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Phone, user.Phone)
			assert.Equal(t, tt.req.Email, user.Email)
			assert.Equal(t, "hashed_"+tt.req.Password, user.PasswordHash)
			assert.Equal(t, "M0001", user.MemberNumber)
			assert.Equal(t, "user", user.Role)
			assert.Equal(t, tt.req.Nickname, user.Nickname)
		})
	}
}

func TestRegistrationService_ConsumesVerification(t *testing.T) {
	store := newTestStore(t)
	verifyRegisterCode(t, store, testPhone, testEmail)
	svc := createRegistrationServiceForTest(store)
	ctx := createTestContext(t)

	_, err := svc.Register(ctx, domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"})
	require.NoError(t, err)

	assert.Zero(t, store.countOTPs(t, testPhone, domain.PurposeRegister), "no REGISTER records remain for the phone")

	_, err = svc.Register(ctx, domain.RegistrationRequest{Phone: testPhone, Email: "second@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, domain.ErrVerificationMissing), "one verification admits one account")
}

func TestRegistrationService_MemberNumberFailure(t *testing.T) {
	store := newTestStore(t)
	verifyRegisterCode(t, store, testPhone, testEmail)
	gen := mocks.NewMockMemberNumberGenerator()
	gen.NextFunc = func(ctx context.Context) (string, error) {
		return "", errors.New("clock moved backwards")
	}
	svc := NewRegistrationService(store.users, store.otps, mocks.NewMockPasswordService(), gen,
		RegistrationConfig{FreshnessWindow: 30 * time.Minute}, zap.NewNop())
	ctx := createTestContext(t)

	_, err := svc.Register(ctx, domain.RegistrationRequest{Phone: testPhone, Email: testEmail, Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInternal, domain.CodeOf(err))

	_, err = store.users.FindByPhone(ctx, testPhone)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	_, err = store.otps.FindVerifiedSince(ctx, testPhone, domain.PurposeRegister, time.Now().Add(-time.Hour))
	assert.NoError(t, err, "verification survives a failed finalization")
}
