package mocks

import (
	"strings"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// fakeHashPrefix marks a password "hashed" by MockPasswordService. Service
// tests compare stored hashes against it, e.g. "hashed_password123".
const fakeHashPrefix = "hashed_"

// MockPasswordService is a reversible stand-in for the bcrypt hasher
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

// NewMockPasswordService creates a MockPasswordService using the
// fakeHashPrefix scheme
func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

// Hash prefixes password with fakeHashPrefix unless HashFunc is set
func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return fakeHashPrefix + password, nil
}

// Verify reports whether hashedPassword is the fake hash of password
func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	plain, ok := strings.CutPrefix(hashedPassword, fakeHashPrefix)
	return ok && plain == password
}

var _ domain.PasswordService = (*MockPasswordService)(nil)
