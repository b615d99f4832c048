package repositories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetToken(phone, hash string) *domain.PasswordResetToken {
	now := time.Now()
	return &domain.PasswordResetToken{
		Phone:     phone,
		TokenHash: hash,
		ExpiresAt: now.Add(15 * time.Minute),
		CreatedAt: now,
	}
}

func TestResetTokenRepositoryImpl_ReplaceRotates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResetTokenRepository(db)
	ctx := context.Background()
	phone := "+85291234567"

	require.NoError(t, repo.Replace(ctx, newResetToken(phone, "hash-1")))
	require.NoError(t, repo.Replace(ctx, newResetToken(phone, "hash-2")))

	_, err := repo.FindUnused(ctx, phone, "hash-1")
	assert.True(t, errors.Is(err, domain.ErrResetTokenInvalid), "older token must be rotated out")

	token, err := repo.FindUnused(ctx, phone, "hash-2")
	require.NoError(t, err)
	assert.Equal(t, phone, token.Phone)

	var unused int64
	require.NoError(t, db.Model(&DBResetToken{}).Where("phone = ? AND used = ?", phone, false).Count(&unused).Error)
	assert.Equal(t, int64(1), unused)
}

func TestResetTokenRepositoryImpl_FindUnusedWrongPhone(t *testing.T) {
	repo := NewResetTokenRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Replace(ctx, newResetToken("+85291234567", "hash-1")))

	_, err := repo.FindUnused(ctx, "+85291111111", "hash-1")
	assert.True(t, errors.Is(err, domain.ErrResetTokenInvalid))
}

func TestResetTokenRepositoryImpl_Redeem(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "+85291234567", "")
	repo := NewResetTokenRepository(db)
	ctx := context.Background()

	token := newResetToken(user.Phone, "hash-1")
	require.NoError(t, repo.Replace(ctx, token))

	require.NoError(t, repo.Redeem(ctx, token.ID, user.Phone, "new_hash"))

	var stored DBUser
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "new_hash", stored.PasswordHash)

	err := repo.Redeem(ctx, token.ID, user.Phone, "another_hash")
	assert.True(t, errors.Is(err, domain.ErrResetTokenInvalid), "a token is redeemable once")

	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "new_hash", stored.PasswordHash)
}

func TestResetTokenRepositoryImpl_RedeemRollsBackWithoutUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResetTokenRepository(db)
	ctx := context.Background()

	token := newResetToken("+85291234567", "hash-1")
	require.NoError(t, repo.Replace(ctx, token))

	err := repo.Redeem(ctx, token.ID, token.Phone, "new_hash")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))

	// the used flag must not have committed
	_, err = repo.FindUnused(ctx, token.Phone, "hash-1")
	assert.NoError(t, err)
}

func TestResetTokenRepositoryImpl_ConcurrentRedeem(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "+85291234567", "")
	repo := NewResetTokenRepository(db)
	ctx := context.Background()

	token := newResetToken(user.Phone, "hash-1")
	require.NoError(t, repo.Replace(ctx, token))

	var (
		wg   sync.WaitGroup
		wins int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Redeem(ctx, token.ID, user.Phone, "new_hash"); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}
