package response

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"go.uber.org/zap"
)

const internalMessage = "internal server error"

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeValidation:   http.StatusBadRequest,
	domain.CodeNotFound:     http.StatusNotFound,
	domain.CodeConflict:     http.StatusConflict,
	domain.CodeForbidden:    http.StatusForbidden,
	domain.CodeRateLimited:  http.StatusTooManyRequests,
	domain.CodeUnauthorized: http.StatusUnauthorized,
	domain.CodeInternal:     http.StatusInternalServerError,
}

// Status returns the HTTP status for an error code
func Status(code domain.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// JSON writes data inside the success envelope
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

// Error aborts the request with the error envelope. Only domain messages
// reach the client; anything else is logged and reported as INTERNAL.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		derr = domain.NewError(domain.CodeInternal, internalMessage, err)
	}

	if derr.Code == domain.CodeInternal {
		if logger == nil {
			logger = zap.L()
		}
		logger.Error("request failed",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	if derr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(derr.RetryAfter.Seconds()))))
	}

	c.AbortWithStatusJSON(Status(derr.Code), gin.H{
		"error": gin.H{
			"code":    derr.Code,
			"message": derr.Message,
		},
	})
}
