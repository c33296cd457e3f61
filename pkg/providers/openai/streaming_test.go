package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

func newStreamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Expected Accept: text/event-stream, got %q", r.Header.Get("Accept"))
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("Expected Authorization header with Bearer token")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
			flusher.Flush()
		}
	}))
}

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	provider, err := NewProvider(providers.ProviderConfig{
		Name:    "openai-test",
		BaseURL: baseURL,
		APIKey:  "test-api-key",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	t.Cleanup(func() { provider.Close() })
	return provider
}

// =============================================================================
// Stream Delivery Tests
// =============================================================================

func TestStreamCompletionChunkDelivery(t *testing.T) {
	server := newStreamServer(t, []string{
		`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}`,
		`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{"content":"Hello"}}]}`,
		`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{"content":" World"}}]}`,
		`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`,
		`data: [DONE]`,
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	stream, err := provider.StreamCompletion(context.Background(), &providers.CompletionRequest{
		Model:    "gpt-4",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Say hello"}},
		Stream:   true,
	})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var content strings.Builder
	var chunks []*providers.StreamChunk
	for chunk := range stream {
		if chunk.Error != nil {
			t.Fatalf("Unexpected stream error: %v", chunk.Error)
		}
		chunks = append(chunks, chunk)
		content.WriteString(chunk.Delta)
	}

	if content.String() != "Hello World" {
		t.Errorf("Expected content %q, got %q", "Hello World", content.String())
	}
	if len(chunks) == 0 {
		t.Fatal("Expected chunks, got none")
	}
	for i, chunk := range chunks {
		if chunk.ID != "chatcmpl-123" || chunk.Model != "gpt-4" {
			t.Errorf("Chunk %d: expected chatcmpl-123/gpt-4, got %s/%s", i, chunk.ID, chunk.Model)
		}
	}

	last := chunks[len(chunks)-1]
	if last.FinishReason != providers.FinishReasonStop {
		t.Errorf("Expected finish reason stop, got %q", last.FinishReason)
	}
	if last.Usage == nil {
		t.Fatal("Expected usage on final chunk, got nil")
	}
	if last.Usage.TotalTokens != 15 {
		t.Errorf("Expected 15 total tokens, got %d", last.Usage.TotalTokens)
	}
}

func TestStreamCompletionOversizedLine(t *testing.T) {
	// A single data line well past bufio.Scanner's default 64KB limit.
	big := strings.Repeat("a", 200*1024)
	server := newStreamServer(t, []string{
		fmt.Sprintf(`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{"content":"%s"}}]}`, big),
		`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	stream, err := provider.StreamCompletion(context.Background(), &providers.CompletionRequest{
		Model:    "gpt-4",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Go long"}},
		Stream:   true,
	})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var content strings.Builder
	for chunk := range stream {
		if chunk.Error != nil {
			t.Fatalf("Unexpected stream error on oversized line: %v", chunk.Error)
		}
		content.WriteString(chunk.Delta)
	}
	if content.Len() != len(big) {
		t.Errorf("Expected %d bytes of content, got %d", len(big), content.Len())
	}
}

func TestStreamCompletionMalformedChunk(t *testing.T) {
	server := newStreamServer(t, []string{
		`data: {"id":"chatcmpl-123","model":"gpt-4","choices":[{"index":0,"delta":{"content":"Hello"}}]}`,
		`data: {"invalid": json}`,
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	stream, err := provider.StreamCompletion(context.Background(), &providers.CompletionRequest{
		Model:    "gpt-4",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Test"}},
		Stream:   true,
	})
	if err != nil {
		t.Fatalf("StreamCompletion failed: %v", err)
	}

	var streamErr error
	for chunk := range stream {
		if chunk.Error != nil {
			streamErr = chunk.Error
			break
		}
	}
	if streamErr == nil {
		t.Fatal("Expected an error chunk for malformed JSON")
	}
	if _, ok := streamErr.(*providers.ParseError); !ok {
		t.Errorf("Expected ParseError, got %T: %v", streamErr, streamErr)
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestStreamCompletionValidation(t *testing.T) {
	provider := newTestProvider(t, "http://localhost:9")

	tests := []struct {
		name string
		req  *providers.CompletionRequest
	}{
		{"nil request", nil},
		{"missing model", &providers.CompletionRequest{
			Messages: []providers.Message{{Role: providers.RoleUser, Content: "Test"}},
		}},
		{"missing messages", &providers.CompletionRequest{Model: "gpt-4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.StreamCompletion(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if _, ok := err.(*providers.ValidationError); !ok {
				t.Errorf("Expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}
