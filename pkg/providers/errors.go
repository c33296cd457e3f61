package providers

import (
	"fmt"
	"time"
)

// ProviderError represents a non-2xx response from an upstream provider.
// It carries the provider name, status code, and upstream message; no
// provider-specific payload fields leak past this type.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the upstream HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the upstream error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthError represents an upstream credential rejection (HTTP 401 or 403).
type AuthError struct {
	// Provider is the name of the provider that rejected the credential
	Provider string

	// Message is the upstream error message
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// UpstreamRateLimitError represents a provider-side 429. This is distinct
// from the gateway's own quota rejection, which never reaches a provider.
type UpstreamRateLimitError struct {
	// Provider is the name of the provider that throttled the request
	Provider string

	// RetryAfter is the wait hint from the Retry-After header (0 if absent)
	RetryAfter time.Duration

	// Message is the upstream error message
	Message string
}

// Error implements the error interface.
func (e *UpstreamRateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limited (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limited: %s", e.Provider, e.Message)
}

// TimeoutError represents an upstream call or inter-chunk gap exceeding the
// configured per-request timeout.
type TimeoutError struct {
	// Provider is the name of the provider where the timeout occurred
	Provider string

	// Timeout is the configured timeout
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError represents a malformed or unsupported provider payload.
type ParseError struct {
	// Provider is the name of the provider that returned the payload
	Provider string

	// RawResponse is the body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an invalid unified request, caught before any
// upstream contact.
type ValidationError struct {
	// Field is the invalid field
	Field string

	// Message describes what is invalid
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// StreamError represents a failure while consuming an upstream stream.
type StreamError struct {
	// Provider is the name of the provider where the error occurred
	Provider string

	// Message describes the failure
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ConfigError represents an invalid provider configuration.
type ConfigError struct {
	// Provider is the provider with invalid configuration
	Provider string

	// Field is the offending configuration field
	Field string

	// Message describes the problem
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}
