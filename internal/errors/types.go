package errors

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "unauthorized", "not_found")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// QuotaResponse is the 429 body for an exhausted daily AI allowance
type QuotaResponse struct {
	ErrorResponse
	Limit    int    `json:"limit"`
	ResetsAt string `json:"resets_at,omitempty"`
}

// result of classifying an error for a response
type ErrorInfo struct {
	category  string
	status    int
	code      string
	message   string
	sanitized string
}

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeConflict        = "conflict"
	CodeTooManyRequests = "too_many_requests"
	CodeQuotaExceeded   = "quota_exceeded"
	CodeUpstreamFailure = "upstream_failure"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryQuota      = "quota"
	CategoryContention = "contention"
	CategoryUpstream   = "upstream"
	CategoryUnknown    = "unknown"
)
