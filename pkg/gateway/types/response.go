package types

import (
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// ChatCompletionResponse is the unified non-streaming response body,
// OpenAI-shaped regardless of which upstream served the request.
type ChatCompletionResponse struct {
	// ID is the response identifier.
	ID string `json:"id"`

	// Object is always "chat.completion".
	Object string `json:"object"`

	// Created is the Unix timestamp of the response.
	Created int64 `json:"created"`

	// Model is the model that generated the response.
	Model string `json:"model"`

	// Choices holds the generated completion. The gateway always
	// returns exactly one choice.
	Choices []Choice `json:"choices"`

	// Usage contains token counts.
	Usage providers.TokenUsage `json:"usage"`
}

// Choice is one generated completion.
type Choice struct {
	// Index is the choice position (always 0).
	Index int `json:"index"`

	// Message is the generated message.
	Message Message `json:"message"`

	// FinishReason indicates why generation stopped.
	FinishReason string `json:"finish_reason"`
}

// ChatCompletionChunk is one streamed response event, OpenAI-shaped.
type ChatCompletionChunk struct {
	// ID is the response identifier (stable across chunks).
	ID string `json:"id"`

	// Object is always "chat.completion.chunk".
	Object string `json:"object"`

	// Created is the Unix timestamp of the chunk.
	Created int64 `json:"created"`

	// Model is the model generating the response.
	Model string `json:"model"`

	// Choices holds the incremental delta.
	Choices []ChunkChoice `json:"choices"`

	// Usage is attached to the final chunk when known.
	Usage *providers.TokenUsage `json:"usage,omitempty"`
}

// ChunkChoice is the delta entry of a streamed chunk.
type ChunkChoice struct {
	// Index is the choice position (always 0).
	Index int `json:"index"`

	// Delta carries the incremental content.
	Delta ChunkDelta `json:"delta"`

	// FinishReason is non-nil on the final chunk.
	FinishReason *string `json:"finish_reason"`
}

// ChunkDelta is the incremental content of a streamed chunk.
type ChunkDelta struct {
	// Role is set on the first chunk only.
	Role string `json:"role,omitempty"`

	// Content is the incremental text.
	Content string `json:"content,omitempty"`
}

// NewChatCompletionResponse builds the outbound body from a unified
// response.
func NewChatCompletionResponse(resp *providers.CompletionResponse) *ChatCompletionResponse {
	return &ChatCompletionResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: resp.Created,
		Model:   resp.Model,
		Choices: []Choice{
			{
				Index: 0,
				Message: Message{
					Role:    providers.RoleAssistant,
					Content: resp.Content,
				},
				FinishReason: resp.FinishReason,
			},
		},
		Usage: resp.Usage,
	}
}

// NewChatCompletionChunk builds one outbound stream event from a
// unified chunk. The first chunk of a stream carries the assistant role
// marker.
func NewChatCompletionChunk(chunk *providers.StreamChunk, created int64, first bool) *ChatCompletionChunk {
	choice := ChunkChoice{
		Index: 0,
		Delta: ChunkDelta{Content: chunk.Delta},
	}
	if first {
		choice.Delta.Role = providers.RoleAssistant
	}
	if chunk.FinishReason != "" {
		reason := chunk.FinishReason
		choice.FinishReason = &reason
	}

	return &ChatCompletionChunk{
		ID:      chunk.ID,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   chunk.Model,
		Choices: []ChunkChoice{choice},
		Usage:   chunk.Usage,
	}
}
