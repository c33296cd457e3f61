package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway/types"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
)

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response body", "error", err)
	}
}

// WriteError translates an internal error and writes the unified error
// body.
func WriteError(w http.ResponseWriter, err error) {
	status, body := TranslateError(err)
	WriteJSON(w, status, body)
}

// SetRateLimitHeaders attaches the account's quota standing to the
// response so well-behaved clients can pace themselves before hitting a
// rejection.
func SetRateLimitHeaders(w http.ResponseWriter, decision *limits.Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit-Monthly", strconv.FormatInt(decision.MonthlyCeiling, 10))
	h.Set("X-RateLimit-Remaining-Monthly", strconv.FormatInt(decision.MonthlyRemaining(), 10))
	h.Set("X-RateLimit-Reset-Monthly", strconv.FormatInt(decision.MonthlyReset.Unix(), 10))
	h.Set("X-RateLimit-Limit-Minute", strconv.FormatInt(decision.MinuteCeiling, 10))
}

// WriteQuotaRejection writes the 429 response for a limiter rejection,
// including a Retry-After header.
func WriteQuotaRejection(w http.ResponseWriter, decision *limits.Decision) {
	SetRateLimitHeaders(w, decision)
	w.Header().Set("Retry-After", strconv.FormatInt(int64(decision.RetryAfter.Seconds()), 10))
	WriteJSON(w, http.StatusTooManyRequests, QuotaRejection(decision))
}

// SSEWriter streams server-sent events to the client. Each event is one
// "data:" line carrying a JSON chunk, terminated by the [DONE] sentinel,
// matching the OpenAI streaming wire format.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares the response for streaming and returns the
// writer, or an error when the underlying writer cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteChunk sends one stream event.
func (s *SSEWriter) WriteChunk(chunk *types.ChatCompletionChunk) error {
	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to encode stream chunk: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends a mid-stream error event. Headers are already
// flushed by the time a stream fails, so the error travels in-band.
func (s *SSEWriter) WriteError(err error) error {
	_, body := TranslateError(err)
	data, encErr := json.Marshal(body)
	if encErr != nil {
		return encErr
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteDone sends the [DONE] sentinel closing the stream.
func (s *SSEWriter) WriteDone() error {
	if _, err := fmt.Fprint(s.w, "data: [DONE]\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
