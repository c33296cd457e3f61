package types

import "time"

// Error kinds exposed to callers. The set is fixed; upstream-specific
// detail is folded into Message rather than leaking new fields.
const (
	// ErrKindInvalidRequest is a malformed or invalid request body (400).
	ErrKindInvalidRequest = "invalid_request"

	// ErrKindUnknownModel means no configured prefix matches the model (404).
	ErrKindUnknownModel = "unknown_model"

	// ErrKindProviderNotAllowed means the account's tier does not enable
	// the resolved provider (403).
	ErrKindProviderNotAllowed = "provider_not_allowed"

	// ErrKindQuotaExceededMonthly is a monthly ceiling rejection (429).
	ErrKindQuotaExceededMonthly = "quota_exceeded_monthly"

	// ErrKindQuotaExceededPerMinute is a per-minute ceiling rejection (429).
	ErrKindQuotaExceededPerMinute = "quota_exceeded_per_minute"

	// ErrKindLimiterUnavailable means the quota store was unreachable and
	// the request was failed closed (503).
	ErrKindLimiterUnavailable = "limiter_unavailable"

	// ErrKindUpstreamTimeout is a provider call or stream gap exceeding
	// the configured timeout (504).
	ErrKindUpstreamTimeout = "upstream_timeout"

	// ErrKindUpstreamError is a provider non-2xx, passed through with a
	// normalized shape (502).
	ErrKindUpstreamError = "upstream_error"

	// ErrKindTransformError is a malformed or unsupported provider
	// payload (502).
	ErrKindTransformError = "transform_error"

	// ErrKindInternal is an unexpected gateway failure (500).
	ErrKindInternal = "internal_error"
)

// ErrorResponse is the fixed error body for every rejection. Quota
// rejections additionally carry the exceeded dimension and the window
// reset time so the caller can decide whether and when to retry.
type ErrorResponse struct {
	// ErrorKind is one of the ErrKind constants.
	ErrorKind string `json:"error_kind"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// RetryAfter is the suggested wait in seconds, present on quota and
	// upstream throttle rejections.
	RetryAfter int64 `json:"retry_after,omitempty"`

	// Dimension names the exceeded quota window ("monthly" or
	// "minute"), present on quota rejections only.
	Dimension string `json:"dimension,omitempty"`

	// Reset is when the exceeded window rolls over, present on quota
	// rejections only.
	Reset *time.Time `json:"reset,omitempty"`

	// UpstreamStatus is the provider's HTTP status, present on upstream
	// errors only.
	UpstreamStatus int `json:"upstream_status,omitempty"`
}

// NewErrorResponse creates an error body with the given kind and message.
func NewErrorResponse(kind, message string) *ErrorResponse {
	return &ErrorResponse{ErrorKind: kind, Message: message}
}
