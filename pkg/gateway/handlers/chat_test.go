package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/accounts"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway/types"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits/quota"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/processing/costs"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/processing/tokens"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/routing"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
)

// fakeCatalog resolves accounts from a map.
type fakeCatalog struct {
	accounts map[string]*accounts.Account
}

func (c *fakeCatalog) Lookup(id string) (*accounts.Account, error) {
	account, ok := c.accounts[id]
	if !ok {
		return nil, &accounts.ErrAccountNotFound{AccountID: id}
	}
	return account, nil
}

// captureSink records usage records synchronously.
type captureSink struct {
	mu      sync.Mutex
	records []*usage.Record
}

func (s *captureSink) Record(record *usage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *captureSink) all() []*usage.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*usage.Record, len(s.records))
	copy(out, s.records)
	return out
}

// fakeProvider implements providers.Provider with canned responses.
type fakeProvider struct {
	name     string
	response *providers.CompletionResponse
	chunks   []*providers.StreamChunk
	err      error
}

func (p *fakeProvider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.response, nil
}

func (p *fakeProvider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if p.err != nil {
		return nil, p.err
	}
	ch := make(chan *providers.StreamChunk, len(p.chunks))
	go func() {
		defer close(ch)
		for _, chunk := range p.chunks {
			select {
			case ch <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (p *fakeProvider) Name() string                      { return p.name }
func (p *fakeProvider) Config() providers.ProviderConfig  { return providers.ProviderConfig{Name: p.name} }
func (p *fakeProvider) IsHealthy() bool                   { return true }
func (p *fakeProvider) Health() providers.ProviderHealth  { return providers.ProviderHealth{IsHealthy: true} }
func (p *fakeProvider) Close() error                      { return nil }

func newTestHandler(t *testing.T, provider *fakeProvider, account *accounts.Account) (*ChatHandler, *captureSink) {
	t.Helper()

	catalog := &fakeCatalog{accounts: map[string]*accounts.Account{account.ID: account}}
	limiter := limits.NewLimiter(quota.NewMemoryStore(), nil, nil)
	router := routing.NewRouter(map[string]providers.Provider{provider.name: provider}, nil)
	sink := &captureSink{}

	h := NewChatHandler(catalog, limiter, router, sink,
		tokens.NewEstimator(), costs.NewCalculator(), nil)
	return h, sink
}

func chatRequest(t *testing.T, accountID string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req.Header.Set(AccountHeader, accountID)
	}
	return req
}

func simpleBody(model string, stream bool) *types.ChatCompletionRequest {
	return &types.ChatCompletionRequest{
		Model:  model,
		Stream: stream,
		Messages: []types.Message{
			{Role: "user", Content: "What is the capital of France?"},
		},
	}
}

// =============================================================================
// Non-Streaming Tests
// =============================================================================

func TestChatCompletionSuccess(t *testing.T) {
	provider := &fakeProvider{
		name: providers.ProviderOpenAI,
		response: &providers.CompletionResponse{
			ID:           "resp-1",
			Model:        "gpt-4o",
			Content:      "Paris.",
			FinishReason: providers.FinishReasonStop,
			Usage:        providers.TokenUsage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
			UsageReported: true,
			Created:      time.Now().Unix(),
		},
	}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", false)))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp types.ChatCompletionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Object != "chat.completion" {
		t.Errorf("Expected chat.completion object, got %s", resp.Object)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != "Paris." {
		t.Errorf("Unexpected choices: %+v", resp.Choices)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}

	if w.Header().Get("X-RateLimit-Remaining-Monthly") == "" {
		t.Error("Expected rate limit headers on success")
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("Expected 1 usage record, got %d", len(records))
	}
	rec := records[0]
	if rec.TokensEstimated {
		t.Error("Expected provider-reported tokens, not estimates")
	}
	if rec.TotalTokens != 15 || rec.StatusCode != http.StatusOK {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.EstimatedCost <= 0 {
		t.Error("Expected a positive estimated cost")
	}
}

func TestChatCompletionEstimatesMissingUsage(t *testing.T) {
	provider := &fakeProvider{
		name: providers.ProviderOpenAI,
		response: &providers.CompletionResponse{
			ID:           "resp-1",
			Model:        "gpt-4o",
			Content:      "The capital of France is Paris.",
			FinishReason: providers.FinishReasonStop,
			// Usage omitted by the upstream
		},
	}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", false)))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("Expected 1 usage record, got %d", len(records))
	}
	rec := records[0]
	if !rec.TokensEstimated {
		t.Error("Expected tokens to be flagged as estimated")
	}
	if rec.PromptTokens == 0 || rec.CompletionTokens == 0 {
		t.Errorf("Expected non-zero estimated counts, got %+v", rec)
	}
	if rec.TotalTokens != rec.PromptTokens+rec.CompletionTokens {
		t.Error("Expected total to equal prompt + completion")
	}
}

func TestChatCompletionUpstreamFailureStillRecorded(t *testing.T) {
	provider := &fakeProvider{
		name: providers.ProviderOpenAI,
		err: &providers.ProviderError{
			Provider:   providers.ProviderOpenAI,
			StatusCode: http.StatusInternalServerError,
			Message:    "upstream exploded",
		},
	}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", false)))

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}

	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.ErrorKind != types.ErrKindUpstreamError {
		t.Errorf("Expected upstream_error, got %s", body.ErrorKind)
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("Expected a failure usage record, got %d records", len(records))
	}
	if records[0].StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected upstream status 500 in record, got %d", records[0].StatusCode)
	}
	if records[0].ErrorMessage == "" {
		t.Error("Expected error message in failure record")
	}
}

// =============================================================================
// Admission and Routing Tests
// =============================================================================

func TestChatCompletionQuotaRejectedWritesNoRecord(t *testing.T) {
	provider := &fakeProvider{
		name:     providers.ProviderOpenAI,
		response: &providers.CompletionResponse{ID: "r", Model: "gpt-4o", Content: "x", UsageReported: true},
	}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	account.MonthlyCeiling = 1
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", false)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", false)))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}

	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.ErrorKind != types.ErrKindQuotaExceededMonthly {
		t.Errorf("Expected quota_exceeded_monthly, got %s", body.ErrorKind)
	}
	if body.Dimension != "monthly" {
		t.Errorf("Expected monthly dimension, got %s", body.Dimension)
	}
	if body.Reset == nil {
		t.Error("Expected reset time on quota rejection")
	}
	if body.RetryAfter <= 0 {
		t.Error("Expected positive retry_after")
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// Only the admitted request is billable and logged
	if got := len(sink.all()); got != 1 {
		t.Errorf("Expected 1 usage record, got %d", got)
	}
}

func TestChatCompletionUnknownModel(t *testing.T) {
	provider := &fakeProvider{name: providers.ProviderOpenAI}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("unknown-model-x", false)))

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}

	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.ErrorKind != types.ErrKindUnknownModel {
		t.Errorf("Expected unknown_model, got %s", body.ErrorKind)
	}

	if got := len(sink.all()); got != 0 {
		t.Errorf("Expected no usage record for routing failure, got %d", got)
	}
}

func TestChatCompletionProviderNotAllowedForTier(t *testing.T) {
	provider := &fakeProvider{name: providers.ProviderAnthropic}
	account := accounts.NewAccount("acct-free", accounts.TierFree)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-free", simpleBody("claude-3-5-sonnet", false)))

	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", w.Code)
	}

	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.ErrorKind != types.ErrKindProviderNotAllowed {
		t.Errorf("Expected provider_not_allowed, got %s", body.ErrorKind)
	}
	if got := len(sink.all()); got != 0 {
		t.Errorf("Expected no usage record, got %d", got)
	}
}

func TestChatCompletionMissingIdentity(t *testing.T) {
	provider := &fakeProvider{name: providers.ProviderOpenAI}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, _ := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "", simpleBody("gpt-4o", false)))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without identity, got %d", w.Code)
	}
}

func TestChatCompletionInvalidBody(t *testing.T) {
	provider := &fakeProvider{name: providers.ProviderOpenAI}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, _ := newTestHandler(t, provider, account)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader("{not json"))
	req.Header.Set(AccountHeader, "acct-1")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid JSON, got %d", w.Code)
	}
}

// =============================================================================
// Streaming Tests
// =============================================================================

func TestChatCompletionStreaming(t *testing.T) {
	provider := &fakeProvider{
		name: providers.ProviderOpenAI,
		chunks: []*providers.StreamChunk{
			{ID: "s-1", Model: "gpt-4o", Delta: "The capital "},
			{ID: "s-1", Model: "gpt-4o", Delta: "is Paris."},
			{
				ID: "s-1", Model: "gpt-4o", FinishReason: providers.FinishReasonStop,
				Usage: &providers.TokenUsage{PromptTokens: 12, CompletionTokens: 6, TotalTokens: 18},
			},
		},
	}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", true)))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, `"content":"The capital "`) {
		t.Error("Expected first delta in stream output")
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]") {
		t.Error("Expected [DONE] sentinel to close the stream")
	}

	// The first data frame carries the assistant role marker
	firstFrame := strings.SplitN(body, "\n\n", 2)[0]
	if !strings.Contains(firstFrame, `"role":"assistant"`) {
		t.Error("Expected role marker on first chunk")
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("Expected 1 usage record, got %d", len(records))
	}
	if records[0].TokensEstimated {
		t.Error("Expected stream-reported usage, not estimates")
	}
	if records[0].TotalTokens != 18 {
		t.Errorf("Expected 18 total tokens, got %d", records[0].TotalTokens)
	}
}

// abortingWriter fails writes after a fixed number of data frames,
// simulating a client that disconnects mid-stream.
type abortingWriter struct {
	*httptest.ResponseRecorder
	writesLeft int
}

func (w *abortingWriter) Write(b []byte) (int, error) {
	if bytes.HasPrefix(b, []byte("data:")) {
		if w.writesLeft <= 0 {
			return 0, errors.New("broken pipe")
		}
		w.writesLeft--
	}
	return w.ResponseRecorder.Write(b)
}

func (w *abortingWriter) Flush() {}

func TestChatCompletionStreamClientAbortRecordsPartialUsage(t *testing.T) {
	chunks := make([]*providers.StreamChunk, 0, 10)
	for i := 0; i < 10; i++ {
		chunks = append(chunks, &providers.StreamChunk{
			ID: "s-1", Model: "gpt-4o", Delta: strings.Repeat("word ", 20),
		})
	}
	provider := &fakeProvider{name: providers.ProviderOpenAI, chunks: chunks}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := &abortingWriter{ResponseRecorder: httptest.NewRecorder(), writesLeft: 3}
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", true)))

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("Expected a partial usage record, got %d records", len(records))
	}

	rec := records[0]
	if !rec.TokensEstimated {
		t.Error("Expected partial usage to be estimated")
	}
	if rec.ErrorMessage == "" {
		t.Error("Expected disconnect noted in the record")
	}
	if rec.CompletionTokens <= 0 {
		t.Error("Expected completion tokens approximated from received chunks")
	}

	// Only the delivered chunks are billed: well under the 10-chunk
	// total, but covering at least the 3 written frames (the 4th chunk
	// was consumed when its write failed).
	fullEstimate := tokens.NewEstimator().EstimateText(strings.Repeat("word ", 20*10), "gpt-4o")
	if rec.CompletionTokens >= fullEstimate {
		t.Errorf("Expected partial billing below full-stream estimate %d, got %d",
			fullEstimate, rec.CompletionTokens)
	}
}

func TestChatCompletionStreamUpstreamErrorMidStream(t *testing.T) {
	provider := &fakeProvider{
		name: providers.ProviderOpenAI,
		chunks: []*providers.StreamChunk{
			{ID: "s-1", Model: "gpt-4o", Delta: "partial "},
			{Error: &providers.StreamError{Provider: providers.ProviderOpenAI, Message: "connection reset"}},
		},
	}
	account := accounts.NewAccount("acct-1", accounts.TierPro)
	h, sink := newTestHandler(t, provider, account)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, chatRequest(t, "acct-1", simpleBody("gpt-4o", true)))

	body := w.Body.String()
	if !strings.Contains(body, "transform_error") {
		t.Errorf("Expected in-band error frame, got: %s", body)
	}

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("Expected a failure record, got %d", len(records))
	}
	if records[0].ErrorMessage == "" {
		t.Error("Expected error message in record")
	}
}
