package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, phone, email string) *DBUser {
	t.Helper()

	user := &DBUser{
		Phone:        phone,
		Email:        nullableString(email),
		PasswordHash: "hashed_password",
		MemberNumber: "M-" + phone,
		Role:         "user",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func TestUserRepositoryImpl_FindByPhone(t *testing.T) {
	tests := []struct {
		name          string
		setupData     func(db *gorm.DB)
		phone         string
		expectedEmail string
		expectedError error
	}{
		{
			name: "successful find by phone",
			setupData: func(db *gorm.DB) {
				seedUser(t, db, "+85291234567", "test@example.com")
			},
			phone:         "+85291234567",
			expectedEmail: "test@example.com",
		},
		{
			name: "user without email",
			setupData: func(db *gorm.DB) {
				seedUser(t, db, "+85291234568", "")
			},
			phone:         "+85291234568",
			expectedEmail: "",
		},
		{
			name:          "phone not found",
			setupData:     func(db *gorm.DB) {},
			phone:         "+85200000000",
			expectedError: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			tt.setupData(db)
			repo := NewUserRepository(db)

			user, err := repo.FindByPhone(context.Background(), tt.phone)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Errorf("expected error %v, got %v", tt.expectedError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Phone != tt.phone {
				t.Errorf("expected phone %s, got %s", tt.phone, user.Phone)
			}
			if user.Email != tt.expectedEmail {
				t.Errorf("expected email %q, got %q", tt.expectedEmail, user.Email)
			}
		})
	}
}

func TestUserRepositoryImpl_FindByPhoneOrEmail(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "+85291234567", "taken@example.com")
	repo := NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.FindByPhoneOrEmail(ctx, "+85291234567", "free@example.com"); err != nil {
		t.Errorf("expected match on phone, got %v", err)
	}
	if user, err := repo.FindByPhoneOrEmail(ctx, "+85299999999", "taken@example.com"); err != nil || user.Email != "taken@example.com" {
		t.Errorf("expected match on email, got %v, %v", user, err)
	}
	if _, err := repo.FindByPhoneOrEmail(ctx, "+85299999999", "free@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := repo.FindByPhoneOrEmail(ctx, "+85299999999", ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("empty email must not match users without email, got %v", err)
	}
}

func TestUserRepositoryImpl_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "+85291234567", "taken@example.com")
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &domain.User{
		Phone:        "+85291234567",
		Email:        "other@example.com",
		PasswordHash: "x",
		MemberNumber: "M-2",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestUserRepositoryImpl_UpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedUser(t, db, "+85291234567", "")
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.UpdatePassword(ctx, seeded.ID, "new_hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, _ := repo.FindByID(ctx, seeded.ID)
	if user.PasswordHash != "new_hash" {
		t.Errorf("expected password hash to be updated, got %s", user.PasswordHash)
	}

	if err := repo.UpdatePassword(ctx, 999, "new_hash"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected not found for missing user, got %v", err)
	}
}

func TestUserRepositoryImpl_UpdateContact(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedUser(t, db, "+85291234567", "old@example.com")
	seedUser(t, db, "+85291111111", "other@example.com")
	repo := NewUserRepository(db)
	ctx := context.Background()

	if err := repo.UpdateContact(ctx, seeded.ID, "+85298765432", "new@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, _ := repo.FindByID(ctx, seeded.ID)
	if user.Phone != "+85298765432" || user.Email != "new@example.com" {
		t.Errorf("contact not updated: %+v", user)
	}

	err := repo.UpdateContact(ctx, seeded.ID, "+85291111111", "new@example.com")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict when taking another user's phone, got %v", err)
	}
	user, _ = repo.FindByID(ctx, seeded.ID)
	if user.Phone != "+85298765432" {
		t.Errorf("failed update must not change phone, got %s", user.Phone)
	}
}
