package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/accounts"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway/types"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/processing/costs"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/processing/tokens"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/routing"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
)

// AccountHeader carries the already-authenticated account identity.
// Authentication itself happens upstream of the gateway; the gateway
// trusts this header from its fronting proxy.
const AccountHeader = "X-Account-ID"

// maxRequestBody caps the inbound body at 10 MB.
const maxRequestBody = 10 << 20

// AccountSource resolves an account identity to its plan and ceilings.
type AccountSource interface {
	Lookup(id string) (*accounts.Account, error)
}

// UsageSink accepts completed-attempt usage records.
type UsageSink interface {
	Record(record *usage.Record) error
}

// ChatHandler orchestrates one completion request: identity, admission,
// routing, dispatch, response translation, and usage recording.
type ChatHandler struct {
	catalog   AccountSource
	limiter   *limits.Limiter
	router    *routing.Router
	recorder  UsageSink
	estimator *tokens.Estimator
	costs     *costs.Calculator
	logger    *slog.Logger
}

// NewChatHandler creates the completion handler.
func NewChatHandler(
	catalog AccountSource,
	limiter *limits.Limiter,
	router *routing.Router,
	recorder UsageSink,
	estimator *tokens.Estimator,
	calculator *costs.Calculator,
	logger *slog.Logger,
) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		catalog:   catalog,
		limiter:   limiter,
		router:    router,
		recorder:  recorder,
		estimator: estimator,
		costs:     calculator,
		logger:    logger.With("component", "gateway.chat"),
	}
}

// ServeHTTP handles POST /v1/chat/completions.
//
// The lifecycle is: identity, rate check, route, dispatch, transform,
// record, respond. A quota rejection short-circuits before any upstream
// contact and writes no usage record; every post-admission upstream
// attempt is recorded, failures included, because the capacity was
// already consumed.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		gateway.WriteJSON(w, http.StatusMethodNotAllowed,
			types.NewErrorResponse(types.ErrKindInvalidRequest, "method not allowed"))
		return
	}

	accountID := r.Header.Get(AccountHeader)
	if accountID == "" {
		gateway.WriteJSON(w, http.StatusUnauthorized,
			types.NewErrorResponse(types.ErrKindInvalidRequest, "missing account identity"))
		return
	}

	account, err := h.catalog.Lookup(accountID)
	if err != nil {
		gateway.WriteJSON(w, http.StatusUnauthorized,
			types.NewErrorResponse(types.ErrKindInvalidRequest, "unknown account"))
		return
	}

	var req types.ChatCompletionRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		gateway.WriteJSON(w, http.StatusBadRequest,
			types.NewErrorResponse(types.ErrKindInvalidRequest, "invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		gateway.WriteError(w, err)
		return
	}

	// Admission consumes quota and is never refunded, so it runs before
	// routing: a request that cannot even name a known model still must
	// not learn quota standing for free, but a rejected one must not be
	// billed. Rejections write no usage record.
	decision, err := h.limiter.Evaluate(r.Context(), account)
	if err != nil {
		gateway.WriteError(w, err)
		return
	}
	if !decision.Allowed {
		gateway.WriteQuotaRejection(w, decision)
		return
	}

	provider, err := h.router.Route(account, req.Model)
	if err != nil {
		// Routing failures never contacted an upstream; they resolve
		// locally with no usage record even though quota was consumed.
		gateway.WriteError(w, err)
		return
	}

	unified := req.ToUnified()

	if req.Stream {
		h.handleStream(w, r, account, provider, unified, decision)
		return
	}
	h.handleCompletion(w, r, account, provider, unified, decision)
}

// handleCompletion runs the non-streaming path.
func (h *ChatHandler) handleCompletion(
	w http.ResponseWriter,
	r *http.Request,
	account *accounts.Account,
	provider providers.Provider,
	unified *providers.CompletionRequest,
	decision *limits.Decision,
) {
	start := time.Now()
	resp, err := provider.SendCompletion(r.Context(), unified)
	latency := time.Since(start)

	if err != nil {
		h.recordFailure(account, provider.Name(), unified, "", latency, err)
		gateway.WriteError(w, err)
		return
	}

	tokenUsage := resp.Usage
	estimated := false
	if !resp.UsageReported {
		tokenUsage = h.estimator.EstimateUsage(unified.Messages, resp.Content, unified.Model)
		estimated = true
	}
	if tokenUsage.TotalTokens == 0 {
		tokenUsage.TotalTokens = tokenUsage.PromptTokens + tokenUsage.CompletionTokens
	}

	h.record(&usage.Record{
		AccountID:        account.ID,
		Provider:         provider.Name(),
		Model:            unified.Model,
		PromptTokens:     tokenUsage.PromptTokens,
		CompletionTokens: tokenUsage.CompletionTokens,
		TotalTokens:      tokenUsage.TotalTokens,
		TokensEstimated:  estimated,
		LatencyMS:        latency.Milliseconds(),
		EstimatedCost:    h.costs.Cost(provider.Name(), unified.Model, tokenUsage),
		StatusCode:       http.StatusOK,
	})

	resp.Usage = tokenUsage
	gateway.SetRateLimitHeaders(w, decision)
	gateway.WriteJSON(w, http.StatusOK, types.NewChatCompletionResponse(resp))
}

// handleStream runs the streaming path. Chunks are forwarded in arrival
// order; a client disconnect cancels the upstream call and still
// produces a partial usage record covering what was observed.
func (h *ChatHandler) handleStream(
	w http.ResponseWriter,
	r *http.Request,
	account *accounts.Account,
	provider providers.Provider,
	unified *providers.CompletionRequest,
	decision *limits.Decision,
) {
	start := time.Now()

	ch, err := provider.StreamCompletion(r.Context(), unified)
	if err != nil {
		h.recordFailure(account, provider.Name(), unified, "", time.Since(start), err)
		gateway.WriteError(w, err)
		return
	}

	gateway.SetRateLimitHeaders(w, decision)
	sse, err := gateway.NewSSEWriter(w)
	if err != nil {
		h.recordFailure(account, provider.Name(), unified, "", time.Since(start), err)
		gateway.WriteError(w, err)
		return
	}

	var (
		content    strings.Builder
		reported   *providers.TokenUsage
		streamErr  error
		clientGone bool
		first      = true
		created    = time.Now().Unix()
	)

	for chunk := range ch {
		if chunk.Error != nil {
			streamErr = chunk.Error
			break
		}

		content.WriteString(chunk.Delta)
		if chunk.Usage != nil {
			reported = chunk.Usage
		}

		if !clientGone {
			out := types.NewChatCompletionChunk(chunk, created, first)
			first = false
			if err := sse.WriteChunk(out); err != nil {
				// Client gone. The request context cancels the upstream
				// call; what already arrived still gets billed.
				clientGone = true
				break
			}
		}
	}

	latency := time.Since(start)

	// Token accounting: trust the provider's figures when the stream
	// delivered them, otherwise approximate from observed text. An
	// aborted stream bills only the chunks that arrived.
	tokenUsage := providers.TokenUsage{}
	estimated := true
	if reported != nil {
		tokenUsage = *reported
		estimated = false
	} else {
		tokenUsage = h.estimator.EstimateUsage(unified.Messages, content.String(), unified.Model)
	}

	record := &usage.Record{
		AccountID:        account.ID,
		Provider:         provider.Name(),
		Model:            unified.Model,
		PromptTokens:     tokenUsage.PromptTokens,
		CompletionTokens: tokenUsage.CompletionTokens,
		TotalTokens:      tokenUsage.TotalTokens,
		TokensEstimated:  estimated,
		LatencyMS:        latency.Milliseconds(),
		EstimatedCost:    h.costs.Cost(provider.Name(), unified.Model, tokenUsage),
		StatusCode:       http.StatusOK,
	}

	switch {
	case clientGone:
		record.ErrorMessage = "client disconnected mid-stream"
		h.record(record)
		return

	case streamErr != nil:
		record.StatusCode = upstreamStatus(streamErr)
		record.ErrorMessage = streamErr.Error()
		h.record(record)
		sse.WriteError(streamErr)
		sse.WriteDone()
		return

	default:
		h.record(record)
		sse.WriteDone()
	}
}

// record hands a completed record to the recorder; recording failures
// are logged, never surfaced to the client.
func (h *ChatHandler) record(record *usage.Record) {
	if err := h.recorder.Record(record); err != nil {
		h.logger.Error("failed to record usage",
			"account_id", record.AccountID,
			"provider", record.Provider,
			"error", err,
		)
	}
}

// recordFailure writes the usage record for a failed upstream attempt.
// Tokens for the completion side are zero; the prompt was still sent.
func (h *ChatHandler) recordFailure(
	account *accounts.Account,
	providerName string,
	unified *providers.CompletionRequest,
	completion string,
	latency time.Duration,
	err error,
) {
	tokenUsage := h.estimator.EstimateUsage(unified.Messages, completion, unified.Model)
	h.record(&usage.Record{
		AccountID:        account.ID,
		Provider:         providerName,
		Model:            unified.Model,
		PromptTokens:     tokenUsage.PromptTokens,
		CompletionTokens: tokenUsage.CompletionTokens,
		TotalTokens:      tokenUsage.TotalTokens,
		TokensEstimated:  true,
		LatencyMS:        latency.Milliseconds(),
		EstimatedCost:    h.costs.Cost(providerName, unified.Model, tokenUsage),
		StatusCode:       upstreamStatus(err),
		ErrorMessage:     err.Error(),
	})
}

// upstreamStatus extracts the status code a failed attempt should be
// recorded under.
func upstreamStatus(err error) int {
	var (
		providerErr  *providers.ProviderError
		authErr      *providers.AuthError
		rateLimitErr *providers.UpstreamRateLimitError
		timeoutErr   *providers.TimeoutError
	)
	switch {
	case errors.As(err, &providerErr):
		return providerErr.StatusCode
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &rateLimitErr):
		return http.StatusTooManyRequests
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return 0
	}
}
