package qwen

import (
	"testing"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// =============================================================================
// Request Transform Tests
// =============================================================================

func TestTransformRequestEnvelope(t *testing.T) {
	req := &providers.CompletionRequest{
		Model: "qwen-max",
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "You are terse."},
			{Role: providers.RoleUser, Content: "Hello"},
			{Role: providers.RoleAssistant, Content: "Hi"},
		},
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   256,
		Stop:        []string{"END"},
	}

	out := transformRequest(req, false)

	if out.Model != "qwen-max" {
		t.Errorf("Expected model qwen-max, got %q", out.Model)
	}
	if len(out.Input.Messages) != len(req.Messages) {
		t.Fatalf("Expected %d messages under input, got %d", len(req.Messages), len(out.Input.Messages))
	}
	for i, msg := range req.Messages {
		if out.Input.Messages[i].Role != msg.Role || out.Input.Messages[i].Content != msg.Content {
			t.Errorf("Message %d: expected %s/%q, got %s/%q",
				i, msg.Role, msg.Content, out.Input.Messages[i].Role, out.Input.Messages[i].Content)
		}
	}

	if out.Parameters == nil {
		t.Fatal("Expected parameters to be set")
	}
	if out.Parameters.ResultFormat != "message" {
		t.Errorf("Expected result_format message, got %q", out.Parameters.ResultFormat)
	}
	if out.Parameters.Temperature != 0.7 || out.Parameters.TopP != 0.9 || out.Parameters.MaxTokens != 256 {
		t.Errorf("Generation parameters not carried over: %+v", out.Parameters)
	}
	if out.Parameters.IncrementalOutput {
		t.Error("Expected incremental_output off for non-streaming requests")
	}
}

func TestTransformRequestStreamingEnablesIncrementalOutput(t *testing.T) {
	req := &providers.CompletionRequest{
		Model:    "qwen-max",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hi"}},
	}

	out := transformRequest(req, true)
	if !out.Parameters.IncrementalOutput {
		t.Error("Expected incremental_output on for streaming requests")
	}
}

// =============================================================================
// Response Transform Tests
// =============================================================================

func TestTransformResponseMessageEnvelope(t *testing.T) {
	resp := &qwenResponse{
		RequestID: "req-123",
		Output: qwenOutput{
			Choices: []qwenChoice{
				{
					FinishReason: "stop",
					Message:      qwenMessage{Role: "assistant", Content: "Hello there"},
				},
			},
		},
		Usage: &qwenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}

	result, err := transformResponse(resp, "qwen-max")
	if err != nil {
		t.Fatalf("transformResponse failed: %v", err)
	}

	if result.ID != "req-123" {
		t.Errorf("Expected ID req-123, got %q", result.ID)
	}
	if result.Model != "qwen-max" {
		t.Errorf("Expected model qwen-max, got %q", result.Model)
	}
	if result.Content != "Hello there" {
		t.Errorf("Expected content %q, got %q", "Hello there", result.Content)
	}
	if result.FinishReason != providers.FinishReasonStop {
		t.Errorf("Expected finish reason stop, got %q", result.FinishReason)
	}
	if !result.UsageReported {
		t.Error("Expected usage to be marked as reported")
	}
	if result.Usage.TotalTokens != 15 {
		t.Errorf("Expected 15 total tokens, got %d", result.Usage.TotalTokens)
	}
}

func TestTransformResponseLegacyTextForm(t *testing.T) {
	resp := &qwenResponse{
		RequestID: "req-123",
		Output: qwenOutput{
			Text:         "Hello",
			FinishReason: "stop",
		},
		// total_tokens absent; it must be derived from the parts.
		Usage: &qwenUsage{InputTokens: 10, OutputTokens: 5},
	}

	result, err := transformResponse(resp, "qwen-max")
	if err != nil {
		t.Fatalf("transformResponse failed: %v", err)
	}
	if result.Content != "Hello" {
		t.Errorf("Expected content %q, got %q", "Hello", result.Content)
	}
	if result.Usage.TotalTokens != 15 {
		t.Errorf("Expected derived total of 15 tokens, got %d", result.Usage.TotalTokens)
	}
}

func TestTransformResponseNoOutput(t *testing.T) {
	_, err := transformResponse(&qwenResponse{RequestID: "req-123"}, "qwen-max")
	if err == nil {
		t.Error("Expected error for response with no output")
	}
}

// =============================================================================
// Stream Chunk Transform Tests
// =============================================================================

func TestTransformStreamChunk(t *testing.T) {
	midFrame := &qwenResponse{
		RequestID: "req-123",
		Output: qwenOutput{
			Choices: []qwenChoice{
				{
					// DashScope reports "null" as a literal string mid-stream.
					FinishReason: "null",
					Message:      qwenMessage{Role: "assistant", Content: "Hello"},
				},
			},
		},
		Usage: &qwenUsage{InputTokens: 10, OutputTokens: 1, TotalTokens: 11},
	}

	chunk := transformStreamChunk(midFrame, "qwen-max")
	if chunk == nil {
		t.Fatal("Expected chunk, got nil")
	}
	if chunk.ID != "req-123" || chunk.Model != "qwen-max" {
		t.Errorf("Expected req-123/qwen-max, got %s/%s", chunk.ID, chunk.Model)
	}
	if chunk.Delta != "Hello" {
		t.Errorf("Expected delta %q, got %q", "Hello", chunk.Delta)
	}
	if chunk.FinishReason != "" {
		t.Errorf("Expected empty finish reason mid-stream, got %q", chunk.FinishReason)
	}
	// Usage attaches only once the finish reason arrives.
	if chunk.Usage != nil {
		t.Errorf("Expected no usage on mid-stream chunk, got %+v", chunk.Usage)
	}

	finalFrame := &qwenResponse{
		RequestID: "req-123",
		Output: qwenOutput{
			Choices: []qwenChoice{
				{FinishReason: "stop", Message: qwenMessage{Role: "assistant", Content: "!"}},
			},
		},
		Usage: &qwenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}

	chunk = transformStreamChunk(finalFrame, "qwen-max")
	if chunk == nil {
		t.Fatal("Expected chunk, got nil")
	}
	if chunk.FinishReason != providers.FinishReasonStop {
		t.Errorf("Expected finish reason stop, got %q", chunk.FinishReason)
	}
	if chunk.Usage == nil || chunk.Usage.TotalTokens != 15 {
		t.Errorf("Expected usage with 15 total tokens, got %+v", chunk.Usage)
	}
}

func TestTransformStreamChunkEmptyFrame(t *testing.T) {
	frame := &qwenResponse{RequestID: "req-123"}
	if chunk := transformStreamChunk(frame, "qwen-max"); chunk != nil {
		t.Errorf("Expected nil for empty frame, got %+v", chunk)
	}
}

// =============================================================================
// Finish Reason Tests
// =============================================================================

func TestNormalizeFinishReason(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"stop", providers.FinishReasonStop},
		{"length", providers.FinishReasonLength},
		{"null", ""},
		{"", ""},
		{"other", "other"},
	}

	for _, tt := range tests {
		if got := normalizeFinishReason(tt.in); got != tt.want {
			t.Errorf("normalizeFinishReason(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
