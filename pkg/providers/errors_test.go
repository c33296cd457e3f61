package providers

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProviderError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &ProviderError{
			Provider:   "openai",
			StatusCode: 500,
			Message:    "internal error",
		}

		expected := `provider "openai" error (status 500): internal error`
		if err.Error() != expected {
			t.Errorf("Expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("without status code", func(t *testing.T) {
		err := &ProviderError{
			Provider: "openai",
			Message:  "connection failed",
		}

		expected := `provider "openai" error: connection failed`
		if err.Error() != expected {
			t.Errorf("Expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("network timeout")
		err := &ProviderError{
			Provider: "openai",
			Message:  "request failed",
			Cause:    cause,
		}

		if !errors.Is(err, cause) {
			t.Error("Expected error to wrap cause")
		}
		if errors.Unwrap(err) != cause {
			t.Errorf("Expected unwrapped error to be %v, got %v", cause, errors.Unwrap(err))
		}
	})
}

func TestAuthError(t *testing.T) {
	err := &AuthError{
		Provider: "openai",
		Message:  "Invalid API key",
	}

	expected := `provider "openai" authentication failed: Invalid API key`
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestUpstreamRateLimitError(t *testing.T) {
	t.Run("with retry after", func(t *testing.T) {
		err := &UpstreamRateLimitError{
			Provider:   "openai",
			RetryAfter: 10 * time.Second,
			Message:    "Too many requests",
		}

		errStr := err.Error()
		if !strings.Contains(errStr, "rate limited") {
			t.Errorf("Expected 'rate limited' in message, got %q", errStr)
		}
		if !strings.Contains(errStr, "10s") {
			t.Errorf("Expected retry duration in message, got %q", errStr)
		}
	})

	t.Run("without retry after", func(t *testing.T) {
		err := &UpstreamRateLimitError{
			Provider: "openai",
			Message:  "Too many requests",
		}

		expected := `provider "openai" rate limited: Too many requests`
		if err.Error() != expected {
			t.Errorf("Expected %q, got %q", expected, err.Error())
		}
	})
}

func TestTimeoutError(t *testing.T) {
	err := &TimeoutError{
		Provider: "anthropic",
		Timeout:  30 * time.Second,
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "anthropic") {
		t.Errorf("Expected provider name in message, got %q", errStr)
	}
	if !strings.Contains(errStr, "timeout") {
		t.Errorf("Expected 'timeout' in message, got %q", errStr)
	}
	if !strings.Contains(errStr, "30s") {
		t.Errorf("Expected timeout duration in message, got %q", errStr)
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("invalid character '}'")
	err := &ParseError{
		Provider:    "google",
		RawResponse: `{"invalid": }`,
		Cause:       cause,
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "parse error") {
		t.Errorf("Expected 'parse error' in message, got %q", errStr)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to wrap cause")
	}

	// The raw body stays on the struct for debugging but never reaches
	// the error string, which may end up in client-facing logs.
	if strings.Contains(errStr, `{"invalid": }`) {
		t.Errorf("Expected raw response kept out of message, got %q", errStr)
	}
	if err.RawResponse != `{"invalid": }` {
		t.Error("Expected RawResponse field preserved")
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "model",
		Message: "model is required",
	}

	expected := `validation error for field "model": model is required`
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestStreamError(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection lost")
		err := &StreamError{
			Provider: "openai",
			Message:  "stream interrupted",
			Cause:    cause,
		}

		errStr := err.Error()
		if !strings.Contains(errStr, "stream error") {
			t.Errorf("Expected 'stream error' in message, got %q", errStr)
		}
		if !strings.Contains(errStr, "stream interrupted") {
			t.Errorf("Expected message text, got %q", errStr)
		}
		if !strings.Contains(errStr, "connection lost") {
			t.Errorf("Expected cause in message, got %q", errStr)
		}
		if errors.Unwrap(err) != cause {
			t.Errorf("Expected unwrapped error to be %v, got %v", cause, errors.Unwrap(err))
		}
	})

	t.Run("without cause", func(t *testing.T) {
		err := &StreamError{
			Provider: "openai",
			Message:  "stream ended unexpectedly",
		}

		errStr := err.Error()
		if !strings.Contains(errStr, "stream ended unexpectedly") {
			t.Errorf("Expected message text, got %q", errStr)
		}
	})
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{
		Provider: "qwen",
		Field:    "api_key",
		Message:  "API key is required",
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "qwen") {
		t.Errorf("Expected provider name in message, got %q", errStr)
	}
	if !strings.Contains(errStr, "api_key") {
		t.Errorf("Expected field name in message, got %q", errStr)
	}
}

func TestErrorChainTraversal(t *testing.T) {
	rootCause := errors.New("TCP connection refused")
	providerErr := &ProviderError{
		Provider: "openai",
		Message:  "upstream request failed",
		Cause:    rootCause,
	}
	streamErr := &StreamError{
		Provider: "openai",
		Message:  "stream initialization failed",
		Cause:    providerErr,
	}

	if !errors.Is(streamErr, rootCause) {
		t.Error("Expected errors.Is to traverse the full chain")
	}

	var foundProvider *ProviderError
	if !errors.As(streamErr, &foundProvider) {
		t.Error("Expected errors.As to find ProviderError in chain")
	}
	var foundStream *StreamError
	if !errors.As(streamErr, &foundStream) {
		t.Error("Expected errors.As to find StreamError in chain")
	}
}
