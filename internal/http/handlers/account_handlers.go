package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/middleware"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/response"
	"go.uber.org/zap"
)

// AccountHandlers serves the authenticated /account routes
type AccountHandlers struct {
	svc    domain.IdentityService
	logger *zap.Logger
}

// NewAccountHandlers creates new account handlers
func NewAccountHandlers(svc domain.IdentityService, logger *zap.Logger) *AccountHandlers {
	return &AccountHandlers{svc: svc, logger: logger.Named("http")}
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ContactChangeRequest carries the new contact values; omitted fields stay
type ContactChangeRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
}

// ContactVerifyRequest submits the code for the current step
type ContactVerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// ContactFlowResponse is the client view of a contact-change flow
type ContactFlowResponse struct {
	Step          domain.ContactChangeStep `json:"step"`
	Phone         string                   `json:"phone,omitempty"`
	Email         string                   `json:"email,omitempty"`
	PhoneVerified bool                     `json:"phoneVerified"`
	EmailVerified bool                     `json:"emailVerified"`
}

// ChangePassword handles POST /account/password
func (h *AccountHandlers) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), clientContext(c), userID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{})
}

// StartContactChange handles POST /account/contact
func (h *AccountHandlers) StartContactChange(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req ContactChangeRequest
	if !h.bind(c, &req) {
		return
	}

	flow, err := h.svc.StartContactChange(c.Request.Context(), clientContext(c), userID, domain.ContactChangeRequest{
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, flowResponse(flow))
}

// VerifyContactChange handles POST /account/contact/verify
func (h *AccountHandlers) VerifyContactChange(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req ContactVerifyRequest
	if !h.bind(c, &req) {
		return
	}

	flow, err := h.svc.VerifyContactChange(c.Request.Context(), clientContext(c), userID, req.Code)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, flowResponse(flow))
}

// GetContactChange handles GET /account/contact
func (h *AccountHandlers) GetContactChange(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	flow, err := h.svc.GetContactChange(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, flowResponse(flow))
}

// CancelContactChange handles DELETE /account/contact
func (h *AccountHandlers) CancelContactChange(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.svc.CancelContactChange(c.Request.Context(), userID); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{})
}

func (h *AccountHandlers) currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, h.logger, domain.ErrUnauthorized)
	}
	return userID, ok
}

func (h *AccountHandlers) bind(c *gin.Context, req interface{}) bool {
	return bindJSON(c, h.logger, req)
}

func flowResponse(flow *domain.ContactChangeFlow) ContactFlowResponse {
	return ContactFlowResponse{
		Step:          flow.Step,
		Phone:         flow.NewPhone,
		Email:         flow.NewEmail,
		PhoneVerified: flow.PhoneVerified,
		EmailVerified: flow.EmailVerified,
	}
}
