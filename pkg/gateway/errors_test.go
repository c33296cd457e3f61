package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway/types"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits/quota"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/routing"
)

// =============================================================================
// TranslateError Tests
// =============================================================================

func TestTranslateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "request validation",
			err:        &types.ValidationError{Field: "model", Message: "model is required"},
			wantStatus: http.StatusBadRequest,
			wantKind:   types.ErrKindInvalidRequest,
		},
		{
			name:       "unknown model",
			err:        &routing.UnknownModelError{Model: "mystery-1"},
			wantStatus: http.StatusNotFound,
			wantKind:   types.ErrKindUnknownModel,
		},
		{
			name:       "provider not allowed",
			err:        &routing.ProviderNotAllowedError{AccountID: "a", Provider: "anthropic", Tier: "free"},
			wantStatus: http.StatusForbidden,
			wantKind:   types.ErrKindProviderNotAllowed,
		},
		{
			name:       "limiter unavailable",
			err:        &limits.LimiterUnavailableError{Cause: errors.New("redis down")},
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   types.ErrKindLimiterUnavailable,
		},
		{
			name:       "upstream timeout",
			err:        &providers.TimeoutError{Provider: "openai", Timeout: 30 * time.Second},
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   types.ErrKindUpstreamTimeout,
		},
		{
			name:       "upstream auth failure",
			err:        &providers.AuthError{Provider: "openai", Message: "invalid key"},
			wantStatus: http.StatusBadGateway,
			wantKind:   types.ErrKindUpstreamError,
		},
		{
			name:       "unreadable upstream payload",
			err:        &providers.ParseError{Provider: "google", Cause: errors.New("bad json")},
			wantStatus: http.StatusBadGateway,
			wantKind:   types.ErrKindTransformError,
		},
		{
			name:       "mid-stream failure",
			err:        &providers.StreamError{Provider: "openai", Message: "connection reset"},
			wantStatus: http.StatusBadGateway,
			wantKind:   types.ErrKindTransformError,
		},
		{
			name:       "generic upstream error",
			err:        &providers.ProviderError{Provider: "openai", StatusCode: 500, Message: "oops"},
			wantStatus: http.StatusBadGateway,
			wantKind:   types.ErrKindUpstreamError,
		},
		{
			name:       "unrecognized error",
			err:        errors.New("something unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantKind:   types.ErrKindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := TranslateError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, status)
			}
			if body.ErrorKind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, body.ErrorKind)
			}
			if body.Message == "" {
				t.Error("Expected a message in the error body")
			}
		})
	}
}

func TestTranslateErrorWrappedChain(t *testing.T) {
	inner := &routing.UnknownModelError{Model: "mystery-1"}
	wrapped := fmt.Errorf("routing request: %w", inner)

	status, body := TranslateError(wrapped)
	if status != http.StatusNotFound {
		t.Errorf("Expected 404 through the wrap, got %d", status)
	}
	if body.ErrorKind != types.ErrKindUnknownModel {
		t.Errorf("Expected unknown_model, got %s", body.ErrorKind)
	}
}

func TestTranslateErrorUpstreamRateLimitCarriesRetryAfter(t *testing.T) {
	err := &providers.UpstreamRateLimitError{
		Provider:   "openai",
		RetryAfter: 30 * time.Second,
	}

	status, body := TranslateError(err)
	if status != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", status)
	}
	if body.UpstreamStatus != http.StatusTooManyRequests {
		t.Errorf("Expected upstream status 429, got %d", body.UpstreamStatus)
	}
	if body.RetryAfter != 30 {
		t.Errorf("Expected retry_after 30, got %d", body.RetryAfter)
	}
}

func TestTranslateErrorDoesNotLeakInternals(t *testing.T) {
	_, body := TranslateError(errors.New("pq: connection refused on 10.0.0.5"))
	if body.ErrorKind != types.ErrKindInternal {
		t.Fatalf("Expected internal kind, got %s", body.ErrorKind)
	}
	if body.Message != "an internal error occurred" {
		t.Errorf("Internal detail leaked into message: %q", body.Message)
	}
}

// =============================================================================
// QuotaRejection Tests
// =============================================================================

func TestQuotaRejectionMonthly(t *testing.T) {
	reset := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	decision := &limits.Decision{
		Exceeded:   quota.DimensionMonthly,
		Reset:      reset,
		RetryAfter: 72 * time.Hour,
	}

	body := QuotaRejection(decision)
	if body.ErrorKind != types.ErrKindQuotaExceededMonthly {
		t.Errorf("Expected quota_exceeded_monthly, got %s", body.ErrorKind)
	}
	if body.Dimension != string(quota.DimensionMonthly) {
		t.Errorf("Expected monthly dimension, got %s", body.Dimension)
	}
	if body.Reset == nil || !body.Reset.Equal(reset) {
		t.Errorf("Expected reset %v, got %v", reset, body.Reset)
	}
	if body.RetryAfter != int64((72 * time.Hour).Seconds()) {
		t.Errorf("Unexpected retry_after: %d", body.RetryAfter)
	}
}

func TestQuotaRejectionPerMinute(t *testing.T) {
	decision := &limits.Decision{
		Exceeded:   quota.DimensionMinute,
		Reset:      time.Now().Add(20 * time.Second),
		RetryAfter: 20 * time.Second,
	}

	body := QuotaRejection(decision)
	if body.ErrorKind != types.ErrKindQuotaExceededPerMinute {
		t.Errorf("Expected quota_exceeded_per_minute, got %s", body.ErrorKind)
	}
	if body.RetryAfter != 20 {
		t.Errorf("Expected retry_after 20, got %d", body.RetryAfter)
	}
}
