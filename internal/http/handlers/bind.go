package handlers

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/response"
	"go.uber.org/zap"
)

var errBadRequest = domain.NewError(domain.CodeValidation, "invalid request body", nil)

// bindJSON decodes the body into req and runs its binding rules. Failed
// rules are reported by JSON field name.
func bindJSON(c *gin.Context, logger *zap.Logger, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	message := errBadRequest.Message
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, jsonName(f.Field()))
		}
		message = "invalid or missing fields: " + strings.Join(names, ", ")
	}
	response.Error(c, logger, domain.NewError(domain.CodeValidation, message, err))
	return false
}

// jsonName turns ResetToken into resetToken
func jsonName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToLower(r)) + field[size:]
}
