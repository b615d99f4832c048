package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

var errIdentifierTaken = domain.NewError(domain.CodeConflict, "phone number or email is already registered", nil)

// Create implements domain.UserRepository
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	dbUser := r.domainToDB(user)
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewError(domain.CodeConflict, errIdentifierTaken.Message, err)
		}
		return err
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	user.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByPhone implements domain.UserRepository
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("phone = ?", phone))
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("email = ?", email))
}

// FindByPhoneOrEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByPhoneOrEmail(ctx context.Context, phone, email string) (*domain.User, error) {
	if email == "" {
		return r.FindByPhone(ctx, phone)
	}
	return r.findOne(r.db.WithContext(ctx).Where("phone = ? OR email = ?", phone, email))
}

// UpdatePassword implements domain.UserRepository
func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"password": passwordHash, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateContact implements domain.UserRepository. Both columns change in one
// statement.
func (r *UserRepositoryImpl) UpdateContact(ctx context.Context, userID uint, phone, email string) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"phone": phone, "email": nullableString(email), "updated_at": time.Now()})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return domain.NewError(domain.CodeConflict, errIdentifierTaken.Message, res.Error)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) findOne(q *gorm.DB) (*domain.User, error) {
	var dbUser DBUser
	if err := q.First(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// domainToDB converts domain user to database user
func (r *UserRepositoryImpl) domainToDB(user *domain.User) *DBUser {
	return &DBUser{
		ID:           user.ID,
		Phone:        user.Phone,
		Email:        nullableString(user.Email),
		PasswordHash: user.PasswordHash,
		MemberNumber: user.MemberNumber,
		Nickname:     user.Nickname,
		Title:        user.Title,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	user := &domain.User{
		ID:           dbUser.ID,
		Phone:        dbUser.Phone,
		PasswordHash: dbUser.PasswordHash,
		MemberNumber: dbUser.MemberNumber,
		Nickname:     dbUser.Nickname,
		Title:        dbUser.Title,
		Role:         dbUser.Role,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}
	if dbUser.Email != nil {
		user.Email = *dbUser.Email
	}
	return user
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
