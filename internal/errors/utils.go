package errors

import (
	"context"
	"errors"
	"net/http"
	"os"

	"codeberg.org/talespin/server/internal/agent"
	"codeberg.org/talespin/server/internal/quota"
	"codeberg.org/talespin/server/talespin/characters"
	"codeberg.org/talespin/server/talespin/community"
	"codeberg.org/talespin/server/talespin/conversations"
	"codeberg.org/talespin/server/talespin/social"
	"codeberg.org/talespin/server/talespin/stories"
	"codeberg.org/talespin/server/talespin/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// postgres unique_violation
const pgUniqueViolation = "23505"

// not-found sentinels of the domain repositories, keyed to the resource name
var notFoundErrors = []struct {
	err      error
	resource string
}{
	{characters.ErrCharacterNotFound, "character"},
	{conversations.ErrConversationNotFound, "conversation"},
	{stories.ErrStoryNotFound, "story"},
	{community.ErrPostNotFound, "post"},
	{users.ErrUserNotFound, "user"},
}

// maps an error onto its category, response status and code. The sanitized
// text is what clients see in details.
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{category: CategoryUnknown, status: http.StatusInternalServerError, code: CodeServerError}
	}

	production := os.Getenv("ENVIRONMENT") == "production"

	info := func(category string, status int, code, public string) ErrorInfo {
		return ErrorInfo{
			category:  category,
			status:    status,
			code:      code,
			message:   public,
			sanitized: ternary(production, public, err.Error()),
		}
	}

	var exceeded *quota.ExceededError
	if errors.As(err, &exceeded) {
		return info(CategoryQuota, http.StatusTooManyRequests, CodeQuotaExceeded, exceeded.Error())
	}

	// lost every CAS round; the same request can simply be sent again
	if errors.Is(err, quota.ErrContention) {
		return info(CategoryContention, http.StatusConflict, CodeConflict, "usage is being updated by another request, try again")
	}

	var gateway *agent.GatewayError
	if errors.As(err, &gateway) {
		return info(CategoryUpstream, http.StatusBadGateway, CodeUpstreamFailure, "AI service unavailable")
	}

	for _, nf := range notFoundErrors {
		if errors.Is(err, nf.err) {
			return info(CategoryNotFound, http.StatusNotFound, CodeNotFound, nf.resource+" not found")
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return info(CategoryNotFound, http.StatusNotFound, CodeNotFound, "resource not found")
	}

	if errors.Is(err, agent.ErrNotOwner) || errors.Is(err, agent.ErrPremiumRequired) {
		return info(CategoryAuth, http.StatusForbidden, CodeForbidden, err.Error())
	}

	if errors.Is(err, social.ErrSelfFollow) || errors.Is(err, quota.ErrNoUserID) {
		return info(CategoryValidation, http.StatusBadRequest, CodeBadRequest, err.Error())
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return info(CategoryDatabase, http.StatusConflict, CodeConflict, "resource already exists")
		}

		return info(CategoryDatabase, http.StatusInternalServerError, CodeServerError, "database operation failed")
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return info(CategoryTimeout, http.StatusGatewayTimeout, CodeServerError, "request timed out")
	}

	if errors.Is(err, context.Canceled) {
		return info(CategoryTimeout, http.StatusServiceUnavailable, CodeServerError, "request canceled")
	}

	return info(CategoryUnknown, http.StatusInternalServerError, CodeServerError, "an error occurred")
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}

// returns the error category
func Category(err error) string {
	return classifyError(err).category
}
