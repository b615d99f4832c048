package mocks

import (
	"context"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockUserRepository implements domain.UserRepository interface for testing
type MockUserRepository struct {
	CreateFunc             func(ctx context.Context, user *domain.User) error
	FindByIDFunc           func(ctx context.Context, id uint) (*domain.User, error)
	FindByPhoneFunc        func(ctx context.Context, phone string) (*domain.User, error)
	FindByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	FindByPhoneOrEmailFunc func(ctx context.Context, phone, email string) (*domain.User, error)
	UpdatePasswordFunc     func(ctx context.Context, userID uint, passwordHash string) error
	UpdateContactFunc      func(ctx context.Context, userID uint, phone, email string) error
}

// NewMockUserRepository creates a new MockUserRepository with default behaviors
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

// Create creates a new user
func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	// Default behavior: success
	return nil
}

// FindByID finds a user by ID
func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByPhone finds a user by phone number
func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.FindByPhoneFunc != nil {
		return m.FindByPhoneFunc(ctx, phone)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByEmail finds a user by email
func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// FindByPhoneOrEmail finds a user owning either identifier
func (m *MockUserRepository) FindByPhoneOrEmail(ctx context.Context, phone, email string) (*domain.User, error) {
	if m.FindByPhoneOrEmailFunc != nil {
		return m.FindByPhoneOrEmailFunc(ctx, phone, email)
	}
	// Default behavior: not found
	return nil, domain.ErrUserNotFound
}

// UpdatePassword stores a new password hash
func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

// UpdateContact stores new phone and email values
func (m *MockUserRepository) UpdateContact(ctx context.Context, userID uint, phone, email string) error {
	if m.UpdateContactFunc != nil {
		return m.UpdateContactFunc(ctx, userID, phone, email)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*MockUserRepository)(nil)
