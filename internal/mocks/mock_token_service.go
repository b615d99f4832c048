package mocks

import (
	"time"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	ValidateAccessTokenFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// ValidateAccessToken validates an access token
func (m *MockTokenService) ValidateAccessToken(token string) (*domain.TokenClaims, error) {
	if m.ValidateAccessTokenFunc != nil {
		return m.ValidateAccessTokenFunc(token)
	}
	// Default behavior: accept "valid_token" as user 1
	if token == "valid_token" {
		now := time.Now().Unix()
		return &domain.TokenClaims{
			UserID:    1,
			Role:      "user",
			IssuedAt:  now,
			ExpiresAt: now + 900,
		}, nil
	}
	return nil, domain.ErrTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
