package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/response"
	"go.uber.org/zap"
)

// Context keys set by the JWT middleware
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// AuthMW wraps the token service for middleware
type AuthMW struct {
	tokenSvc domain.TokenService
	logger   *zap.Logger
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService, logger *zap.Logger) *AuthMW {
	return &AuthMW{tokenSvc: tokenSvc, logger: logger}
}

// WithJWT requires a valid bearer access token and stores its subject and
// role on the context.
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, mw.logger, domain.ErrUnauthorized)
			return
		}

		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") || tokenParts[1] == "" {
			response.Error(c, mw.logger, domain.ErrTokenMalformed)
			return
		}

		claims, err := mw.tokenSvc.ValidateAccessToken(tokenParts[1])
		if err != nil {
			response.Error(c, mw.logger, err)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user set by WithJWT
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
