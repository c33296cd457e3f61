package providers

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoleConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"system role", RoleSystem, "system"},
		{"user role", RoleUser, "user"},
		{"assistant role", RoleAssistant, "assistant"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.constant)
			}
		})
	}
}

func TestFinishReasonConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"stop reason", FinishReasonStop, "stop"},
		{"length reason", FinishReasonLength, "length"},
		{"content filter reason", FinishReasonContentFilter, "content_filter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.constant)
			}
		})
	}
}

func TestProviderNameConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"openai", ProviderOpenAI, "openai"},
		{"anthropic", ProviderAnthropic, "anthropic"},
		{"google", ProviderGoogle, "google"},
		{"qwen", ProviderQwen, "qwen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.constant)
			}
		})
	}
}

func TestCompletionRequestSerialization(t *testing.T) {
	req := &CompletionRequest{
		Model: "gpt-4",
		Messages: []Message{
			{Role: RoleSystem, Content: "You are helpful."},
			{Role: RoleUser, Content: "Hello"},
		},
		Temperature: 0.7,
		MaxTokens:   100,
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Optional fields left at zero must not appear on the wire.
	body := string(data)
	if strings.Contains(body, "stream") {
		t.Errorf("Expected stream omitted when false, got %s", body)
	}
	if strings.Contains(body, "top_p") {
		t.Errorf("Expected top_p omitted when zero, got %s", body)
	}
	if strings.Contains(body, "stop") {
		t.Errorf("Expected stop omitted when empty, got %s", body)
	}

	var decoded CompletionRequest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Model != "gpt-4" {
		t.Errorf("Expected model gpt-4, got %q", decoded.Model)
	}
	if len(decoded.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(decoded.Messages))
	}
	if decoded.Messages[1].Role != RoleUser {
		t.Errorf("Expected user role, got %q", decoded.Messages[1].Role)
	}
}

func TestCompletionResponseUsageReported(t *testing.T) {
	resp := &CompletionResponse{
		ID:           "resp-123",
		Model:        "gpt-4",
		Content:      "Hello, world!",
		FinishReason: FinishReasonStop,
		Usage: TokenUsage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
		UsageReported: true,
	}

	// UsageReported is internal state, never serialized.
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "UsageReported") {
		t.Errorf("Expected UsageReported excluded from JSON, got %s", data)
	}

	if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
		t.Errorf("Expected total %d, got %d",
			resp.Usage.PromptTokens+resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
	}
}

func TestStreamChunkErrorNotSerialized(t *testing.T) {
	chunk := &StreamChunk{
		ID:    "chunk-123",
		Model: "gpt-4",
		Delta: "Hello",
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	body := string(data)
	if strings.Contains(body, "finish_reason") {
		t.Errorf("Expected finish_reason omitted on intermediate chunk, got %s", body)
	}
	if strings.Contains(body, "usage") {
		t.Errorf("Expected usage omitted when nil, got %s", body)
	}
	if strings.Contains(body, "Error") {
		t.Errorf("Expected Error field excluded from JSON, got %s", body)
	}
}
