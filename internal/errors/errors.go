package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/talespin/server/internal/logger"
	"codeberg.org/talespin/server/internal/quota"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for critical errors
//     These functions handle both logging and HTTP response automatically
//   - Use logger.ErrorErr() only for non-critical errors where processing continues
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For WebSocket handlers:
//   - Use logger.ErrorErr() + client.SendError() + return err
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller (handler) decide how to log and respond
//   - Do not log errors in non-handler code (avoid double logging)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}

	c.JSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	message := "validation failed"
	details := ""

	if err != nil {
		details = sanitizeError(err)
		if strings.Contains(err.Error(), "binding") || strings.Contains(err.Error(), "validation") {
			message = "request validation failed"
		}
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: message,
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.FromContext(c.Request.Context()).Error(message,
		"error", err,
		"user_id", c.GetString("user_id"),
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 409 conflict error
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "resource conflict"
	}

	c.JSON(http.StatusConflict, ErrorResponse{
		Error:   CodeConflict,
		Message: message,
	})
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 429 for an exhausted daily AI allowance
func QuotaExceeded(c *gin.Context, limit int, resetsAt time.Time) {
	resp := QuotaResponse{
		ErrorResponse: ErrorResponse{
			Error:   CodeQuotaExceeded,
			Message: fmt.Sprintf("Daily limit of %d chats exceeded", limit),
		},
		Limit: limit,
	}

	if !resetsAt.IsZero() {
		resp.ResetsAt = resetsAt.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusTooManyRequests, resp)
}

// returns a 502 when the AI gateway failed; nothing was committed
func UpstreamFailure(c *gin.Context, message string, err error) {
	if message == "" {
		message = "AI service unavailable"
	}

	logger.FromContext(c.Request.Context()).Warn("upstream failure",
		"error", err,
		"user_id", c.GetString("user_id"),
	)

	c.JSON(http.StatusBadGateway, ErrorResponse{
		Error:   CodeUpstreamFailure,
		Message: message,
		Details: sanitizeError(err),
	})
}

// responds with the status and code the error classifies to. message is
// used for server-side failures; client errors carry the classified message.
func Respond(c *gin.Context, message string, err error) {
	var exceeded *quota.ExceededError
	if stderrors.As(err, &exceeded) {
		QuotaExceeded(c, exceeded.Limit, exceeded.ResetsAt)
		return
	}

	info := classifyError(err)

	if info.status >= http.StatusInternalServerError {
		if message == "" {
			message = info.message
		}

		logger.FromContext(c.Request.Context()).Error(message,
			"error", err,
			"category", info.category,
			"user_id", c.GetString("user_id"),
		)

		c.JSON(info.status, ErrorResponse{
			Error:   info.code,
			Message: message,
			Details: info.sanitized,
		})

		return
	}

	c.JSON(info.status, ErrorResponse{
		Error:   info.code,
		Message: info.message,
	})
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

// validates a UUID string format
func IsValidUUID(id string) bool {
	if id == "" {
		return false
	}

	// canonical 36-character form only; uuid.Parse also takes urn and braced forms
	if len(id) != 36 {
		return false
	}

	return uuid.Validate(id) == nil
}

// validates a UUID parameter from the request path
func ValidatePathUUID(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	if !IsValidUUID(id) {
		NotFound(c, "resource")
		return "", false
	}

	return id, true
}
