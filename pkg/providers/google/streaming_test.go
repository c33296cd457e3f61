package google

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
		// The key travels as a query parameter, not a header.
		if r.URL.Query().Get("key") != "test-api-key" {
			t.Errorf("Expected key query parameter, got %q", r.URL.Query().Get("key"))
		}
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("Expected streamGenerateContent path, got %q", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("Expected alt=sse, got %q", r.URL.Query().Get("alt"))
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
		Name:    "google-test",
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
		`data: {"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"}]}}]}`,
		`data: {"candidates":[{"content":{"role":"model","parts":[{"text":" World"}]}}]}`,
		`data: {"candidates":[{"content":{"role":"model","parts":[{"text":"!"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`,
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	stream, err := provider.StreamCompletion(context.Background(), &providers.CompletionRequest{
		Model:    "gemini-2.0-flash",
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

	if content.String() != "Hello World!" {
		t.Errorf("Expected content %q, got %q", "Hello World!", content.String())
	}
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	// The API returns no response ID; a caller-assigned one must stay
	// stable across all chunks.
	if chunks[0].ID == "" {
		t.Error("Expected a generated chunk ID, got empty string")
	}
	for i, chunk := range chunks {
		if chunk.ID != chunks[0].ID {
			t.Errorf("Chunk %d: expected stable ID %q, got %q", i, chunks[0].ID, chunk.ID)
		}
		if chunk.Model != "gemini-2.0-flash" {
			t.Errorf("Chunk %d: expected model gemini-2.0-flash, got %q", i, chunk.Model)
		}
	}

	last := chunks[len(chunks)-1]
	if last.FinishReason != providers.FinishReasonStop {
		t.Errorf("Expected finish reason stop, got %q", last.FinishReason)
	}
	if last.Usage == nil || last.Usage.TotalTokens != 15 {
		t.Errorf("Expected usage with 15 total tokens on final chunk, got %+v", last.Usage)
	}
}

func TestStreamCompletionOversizedLine(t *testing.T) {
	// A single data line well past bufio.Scanner's default 64KB limit.
	big := strings.Repeat("a", 200*1024)
	server := newStreamServer(t, []string{
		fmt.Sprintf(`data: {"candidates":[{"content":{"role":"model","parts":[{"text":"%s"}]}}]}`, big),
		`data: {"candidates":[{"content":{"role":"model","parts":[]},"finishReason":"STOP"}]}`,
	})
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	stream, err := provider.StreamCompletion(context.Background(), &providers.CompletionRequest{
		Model:    "gemini-2.0-flash",
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
		{"missing messages", &providers.CompletionRequest{Model: "gemini-2.0-flash"}},
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
