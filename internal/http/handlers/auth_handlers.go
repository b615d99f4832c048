package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/response"
	"go.uber.org/zap"
)

// AuthHandlers serves the public verification, registration and
// password-reset routes.
type AuthHandlers struct {
	svc    domain.IdentityService
	logger *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(svc domain.IdentityService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{svc: svc, logger: logger.Named("http")}
}

// SendOTPRequest represents a code request
type SendOTPRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email,omitempty" binding:"omitempty,email"`
	Purpose string `json:"purpose"`
}

// VerifyOTPRequest represents a code submission
type VerifyOTPRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Purpose string `json:"purpose"`
}

// RegisterRequest represents registration finalization
type RegisterRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname,omitempty"`
	Title    string `json:"title,omitempty"`
}

// ResetSendRequest identifies the account by phone or e-mail
type ResetSendRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
}

// ResetVerifyRequest submits the reset code
type ResetVerifyRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
	Code  string `json:"code" binding:"required"`
}

// ResetPasswordRequest redeems a reset token
type ResetPasswordRequest struct {
	Phone      string `json:"phone" binding:"required"`
	Password   string `json:"password" binding:"required"`
	ResetToken string `json:"resetToken" binding:"required"`
}

// SendOTP handles POST /auth/otp/send
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if !h.bind(c, &req) {
		return
	}
	purpose, ok := domain.ParseOTPPurpose(req.Purpose)
	if !ok {
		response.Error(c, h.logger, domain.ErrPurposeInvalid)
		return
	}

	result, err := h.svc.SendOTP(c.Request.Context(), clientContext(c), req.Phone, req.Email, purpose)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"phone":     result.Target,
		"expiresAt": result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// VerifyOTP handles POST /auth/otp/verify
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !h.bind(c, &req) {
		return
	}
	purpose, ok := domain.ParseOTPPurpose(req.Purpose)
	if !ok {
		response.Error(c, h.logger, domain.ErrPurposeInvalid)
		return
	}

	if err := h.svc.VerifyOTP(c.Request.Context(), clientContext(c), req.Phone, req.Code, purpose); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"verified": true})
}

// Register handles POST /auth/register
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	userID, err := h.svc.Register(c.Request.Context(), clientContext(c), domain.RegistrationRequest{
		Phone:    req.Phone,
		Password: req.Password,
		Email:    req.Email,
		Nickname: req.Nickname,
		Title:    req.Title,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{"userId": userID})
}

// ResetPasswordSend handles POST /auth/password/reset/send
func (h *AuthHandlers) ResetPasswordSend(c *gin.Context) {
	var req ResetSendRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ResetPasswordSend(c.Request.Context(), clientContext(c), req.Phone, req.Email)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"method": result.Method})
}

// ResetPasswordVerify handles POST /auth/password/reset/verify
func (h *AuthHandlers) ResetPasswordVerify(c *gin.Context) {
	var req ResetVerifyRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.svc.ResetPasswordVerify(c.Request.Context(), clientContext(c), req.Phone, req.Email, req.Code)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.JSON(c, http.StatusOK, gin.H{
		"verified":   result.Verified,
		"resetToken": result.ResetToken,
	})
}

// ResetPassword handles POST /auth/password/reset
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), clientContext(c), req.Phone, req.Password, req.ResetToken); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{})
}

func (h *AuthHandlers) bind(c *gin.Context, req interface{}) bool {
	return bindJSON(c, h.logger, req)
}

func clientContext(c *gin.Context) *domain.ClientContext {
	return &domain.ClientContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
