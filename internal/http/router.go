package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/handlers"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/middleware"
	"go.uber.org/zap"
)

// BuildRouter mounts the public /auth routes and the JWT and casbin guarded
// /account routes.
func BuildRouter(ah *handlers.AuthHandlers, acc *handlers.AccountHandlers, jwtmw *middleware.AuthMW, cb *middleware.CasbinMW, throttle *middleware.IPThrottle, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), throttle.Handler())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/otp/send", ah.SendOTP)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.POST("/register", ah.Register)
	auth.POST("/password/reset/send", ah.ResetPasswordSend)
	auth.POST("/password/reset/verify", ah.ResetPasswordVerify)
	auth.POST("/password/reset", ah.ResetPassword)

	account := r.Group("/account").Use(jwtmw.WithJWT(), cb.Enforce())
	account.POST("/password", acc.ChangePassword)
	account.POST("/contact", acc.StartContactChange)
	account.POST("/contact/verify", acc.VerifyContactChange)
	account.GET("/contact", acc.GetContactChange)
	account.DELETE("/contact", acc.CancelContactChange)

	return r
}
