package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// Anthropic API request/response types

// anthropicRequest represents an Anthropic Messages API request.
type anthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []anthropicMessage `json:"messages"`
	System        string             `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Temperature   float64            `json:"temperature,omitempty"`
	TopP          float64            `json:"top_p,omitempty"`
	Stream        bool               `json:"stream,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
}

// anthropicMessage represents a message in Anthropic format.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// contentBlock represents a block in an Anthropic response.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// anthropicResponse represents an Anthropic Messages API response.
type anthropicResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      anthropicUsage `json:"usage"`
}

// anthropicUsage represents token usage in Anthropic format.
type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// anthropicStreamEvent represents one event in Anthropic's SSE stream.
// The delta payload shape depends on the event type, so it is decoded
// lazily from the raw message.
type anthropicStreamEvent struct {
	Type         string             `json:"type"`
	Message      *anthropicResponse `json:"message,omitempty"`
	Index        int                `json:"index,omitempty"`
	ContentBlock *contentBlock      `json:"content_block,omitempty"`
	Delta        json.RawMessage    `json:"delta,omitempty"`
	Usage        *anthropicUsage    `json:"usage,omitempty"`
}

// contentDelta is the delta payload of a content_block_delta event.
type contentDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// messageDelta is the delta payload of a message_delta event.
type messageDelta struct {
	StopReason string `json:"stop_reason,omitempty"`
}

// transformRequest translates a unified request to the Messages API format.
// The system message is lifted out into the top-level system field; other
// roles pass through unchanged.
func transformRequest(req *providers.CompletionRequest) (*anthropicRequest, error) {
	out := &anthropicRequest{
		Model:         req.Model,
		Messages:      make([]anthropicMessage, 0, len(req.Messages)),
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		TopP:          req.TopP,
		Stream:        req.Stream,
		StopSequences: req.Stop,
	}

	// max_tokens is mandatory for the Messages API.
	if out.MaxTokens == 0 {
		out.MaxTokens = 4096
	}

	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			out.System = msg.Content
			continue
		}
		out.Messages = append(out.Messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if len(out.Messages) == 0 {
		return nil, &providers.ValidationError{
			Field:   "messages",
			Message: "at least one non-system message is required",
		}
	}

	return out, nil
}

// transformResponse normalizes an Anthropic response to the unified shape.
func transformResponse(resp *anthropicResponse) (*providers.CompletionResponse, error) {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	result := &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      content,
		FinishReason: normalizeStopReason(resp.StopReason),
	}

	if resp.Usage.InputTokens > 0 || resp.Usage.OutputTokens > 0 {
		result.Usage = providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
		result.UsageReported = true
	}

	return result, nil
}

// transformStreamEvent converts one SSE event to a unified chunk.
// Events that carry no client-visible content (message_start, pings,
// block boundaries) return nil and update state as needed.
func transformStreamEvent(event *anthropicStreamEvent, state *streamState) (*providers.StreamChunk, error) {
	switch event.Type {
	case "message_start":
		if event.Message != nil {
			state.id = event.Message.ID
			state.model = event.Message.Model
			state.inputTokens = event.Message.Usage.InputTokens
		}
		return nil, nil

	case "content_block_start", "content_block_stop", "message_stop", "ping":
		return nil, nil

	case "content_block_delta":
		var delta contentDelta
		if err := json.Unmarshal(event.Delta, &delta); err != nil {
			return nil, fmt.Errorf("failed to parse content delta: %w", err)
		}
		if delta.Text == "" {
			return nil, nil
		}
		return &providers.StreamChunk{
			ID:    state.id,
			Model: state.model,
			Delta: delta.Text,
		}, nil

	case "message_delta":
		var delta messageDelta
		if len(event.Delta) > 0 {
			if err := json.Unmarshal(event.Delta, &delta); err != nil {
				return nil, fmt.Errorf("failed to parse message delta: %w", err)
			}
		}
		chunk := &providers.StreamChunk{
			ID:           state.id,
			Model:        state.model,
			FinishReason: normalizeStopReason(delta.StopReason),
		}
		if event.Usage != nil {
			// message_delta usage carries only output tokens; input tokens
			// come from message_start.
			chunk.Usage = &providers.TokenUsage{
				PromptTokens:     state.inputTokens,
				CompletionTokens: event.Usage.OutputTokens,
				TotalTokens:      state.inputTokens + event.Usage.OutputTokens,
			}
		}
		return chunk, nil

	case "error":
		return nil, fmt.Errorf("upstream stream error event")

	default:
		// Unknown event types are skipped for forward compatibility.
		return nil, nil
	}
}

// streamState carries identifiers across stream events.
type streamState struct {
	id          string
	model       string
	inputTokens int
}

// normalizeStopReason maps Anthropic stop reasons to unified values.
func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	case "":
		return ""
	default:
		return reason
	}
}
