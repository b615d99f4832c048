package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/response"
	"go.uber.org/zap"
)

// Authorizer decides whether a role may call method on path
type Authorizer interface {
	Allowed(role, path, method string) (bool, error)
}

// CasbinMW enforces role policies on authenticated routes
type CasbinMW struct {
	authz  Authorizer
	logger *zap.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(authz Authorizer, logger *zap.Logger) *CasbinMW {
	return &CasbinMW{authz: authz, logger: logger}
}

// Enforce must run after WithJWT
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if _, ok := UserID(c); !ok || role == "" {
			response.Error(c, mw.logger, domain.ErrUnauthorized)
			return
		}

		path := c.Request.URL.Path
		method := c.Request.Method
		allowed, err := mw.authz.Allowed(role, path, method)
		if err != nil {
			response.Error(c, mw.logger, fmt.Errorf("authorization check failed: %w", err))
			return
		}
		if !allowed {
			mw.logger.Warn("access denied",
				zap.String("role", role),
				zap.String("path", path),
				zap.String("method", method),
			)
			response.Error(c, mw.logger, domain.NewError(domain.CodeForbidden, "access denied", nil))
			return
		}

		c.Next()
	}
}
