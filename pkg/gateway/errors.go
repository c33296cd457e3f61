package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway/types"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits/quota"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/routing"
)

// TranslateError maps an internal error to an HTTP status and the
// unified error body. Every internal error type folds into the fixed
// taxonomy; unknown errors become internal_error without leaking
// detail.
func TranslateError(err error) (int, *types.ErrorResponse) {
	var (
		validationErr         *types.ValidationError
		providerValidationErr *providers.ValidationError
		unknownModelErr       *routing.UnknownModelError
		notAllowedErr         *routing.ProviderNotAllowedError
		unavailableErr        *routing.ProviderUnavailableError
		limiterErr            *limits.LimiterUnavailableError
		timeoutErr            *providers.TimeoutError
		authErr               *providers.AuthError
		rateLimitErr          *providers.UpstreamRateLimitError
		parseErr              *providers.ParseError
		streamErr             *providers.StreamError
		providerErr           *providers.ProviderError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest,
			types.NewErrorResponse(types.ErrKindInvalidRequest, validationErr.Message)

	case errors.As(err, &providerValidationErr):
		return http.StatusBadRequest,
			types.NewErrorResponse(types.ErrKindInvalidRequest, providerValidationErr.Message)

	case errors.As(err, &unknownModelErr):
		return http.StatusNotFound,
			types.NewErrorResponse(types.ErrKindUnknownModel,
				fmt.Sprintf("no provider is configured for model %q", unknownModelErr.Model))

	case errors.As(err, &notAllowedErr):
		return http.StatusForbidden,
			types.NewErrorResponse(types.ErrKindProviderNotAllowed,
				fmt.Sprintf("provider %q is not enabled on the %s plan", notAllowedErr.Provider, notAllowedErr.Tier))

	case errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable,
			types.NewErrorResponse(types.ErrKindUpstreamError,
				fmt.Sprintf("provider %q is not available", unavailableErr.Provider))

	case errors.As(err, &limiterErr):
		return http.StatusServiceUnavailable,
			types.NewErrorResponse(types.ErrKindLimiterUnavailable,
				"quota verification is temporarily unavailable, request rejected")

	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout,
			types.NewErrorResponse(types.ErrKindUpstreamTimeout,
				fmt.Sprintf("provider %q did not respond within %s", timeoutErr.Provider, timeoutErr.Timeout))

	case errors.As(err, &authErr):
		// An upstream credential failure is a gateway operations
		// problem, not something the caller can fix.
		return http.StatusBadGateway,
			types.NewErrorResponse(types.ErrKindUpstreamError,
				fmt.Sprintf("provider %q rejected the gateway credential", authErr.Provider))

	case errors.As(err, &rateLimitErr):
		resp := types.NewErrorResponse(types.ErrKindUpstreamError,
			fmt.Sprintf("provider %q throttled the request", rateLimitErr.Provider))
		resp.UpstreamStatus = http.StatusTooManyRequests
		if rateLimitErr.RetryAfter > 0 {
			resp.RetryAfter = int64(rateLimitErr.RetryAfter.Seconds())
		}
		return http.StatusBadGateway, resp

	case errors.As(err, &parseErr):
		return http.StatusBadGateway,
			types.NewErrorResponse(types.ErrKindTransformError,
				fmt.Sprintf("provider %q returned an unreadable payload", parseErr.Provider))

	case errors.As(err, &streamErr):
		return http.StatusBadGateway,
			types.NewErrorResponse(types.ErrKindTransformError,
				fmt.Sprintf("provider %q stream failed: %s", streamErr.Provider, streamErr.Message))

	case errors.As(err, &providerErr):
		resp := types.NewErrorResponse(types.ErrKindUpstreamError,
			fmt.Sprintf("provider %q returned an error: %s", providerErr.Provider, providerErr.Message))
		resp.UpstreamStatus = providerErr.StatusCode
		return http.StatusBadGateway, resp

	default:
		return http.StatusInternalServerError,
			types.NewErrorResponse(types.ErrKindInternal, "an internal error occurred")
	}
}

// QuotaRejection builds the 429 body for a limiter rejection, carrying
// the exceeded dimension and reset time.
func QuotaRejection(decision *limits.Decision) *types.ErrorResponse {
	kind := types.ErrKindQuotaExceededPerMinute
	message := "per-minute request ceiling reached"
	if decision.Exceeded == quota.DimensionMonthly {
		kind = types.ErrKindQuotaExceededMonthly
		message = "monthly request ceiling reached"
	}

	reset := decision.Reset
	return &types.ErrorResponse{
		ErrorKind:  kind,
		Message:    message,
		RetryAfter: int64(decision.RetryAfter.Seconds()),
		Dimension:  string(decision.Exceeded),
		Reset:      &reset,
	}
}
