package qwen

import (
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// Alibaba DashScope API types

// qwenRequest represents a DashScope text-generation request.
type qwenRequest struct {
	Model      string          `json:"model"`
	Input      qwenInput       `json:"input"`
	Parameters *qwenParameters `json:"parameters,omitempty"`
}

// qwenInput nests the conversation under the input envelope.
type qwenInput struct {
	Messages []qwenMessage `json:"messages"`
}

// qwenMessage represents a message in DashScope format.
type qwenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// qwenParameters holds the renamed generation parameters.
// result_format "message" selects the choices-style response envelope.
type qwenParameters struct {
	Temperature       float64  `json:"temperature,omitempty"`
	TopP              float64  `json:"top_p,omitempty"`
	MaxTokens         int      `json:"max_tokens,omitempty"`
	Stop              []string `json:"stop,omitempty"`
	ResultFormat      string   `json:"result_format,omitempty"`
	IncrementalOutput bool     `json:"incremental_output,omitempty"`
}

// qwenResponse represents a DashScope response.
type qwenResponse struct {
	Output    qwenOutput `json:"output"`
	Usage     *qwenUsage `json:"usage,omitempty"`
	RequestID string     `json:"request_id"`
}

// qwenOutput carries either the plain text form or the message form,
// depending on result_format.
type qwenOutput struct {
	Text         string       `json:"text,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
	Choices      []qwenChoice `json:"choices,omitempty"`
}

// qwenChoice is one choice in the message-format envelope.
type qwenChoice struct {
	FinishReason string      `json:"finish_reason"`
	Message      qwenMessage `json:"message"`
}

// qwenUsage carries token counts in DashScope naming.
type qwenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// transformRequest translates a unified request to DashScope wire format.
// Messages nest under input and parameters are renamed; result_format is
// pinned to "message" so responses arrive in the choices envelope.
func transformRequest(req *providers.CompletionRequest, stream bool) *qwenRequest {
	messages := make([]qwenMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = qwenMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	params := &qwenParameters{
		Temperature:  req.Temperature,
		TopP:         req.TopP,
		MaxTokens:    req.MaxTokens,
		Stop:         req.Stop,
		ResultFormat: "message",
	}
	if stream {
		params.IncrementalOutput = true
	}

	return &qwenRequest{
		Model:      req.Model,
		Input:      qwenInput{Messages: messages},
		Parameters: params,
	}
}

// transformResponse normalizes a DashScope response to the unified shape.
// Both the message envelope and the legacy text form are accepted.
func transformResponse(resp *qwenResponse, model string) (*providers.CompletionResponse, error) {
	var content, finishReason string

	if len(resp.Output.Choices) > 0 {
		choice := resp.Output.Choices[0]
		content = choice.Message.Content
		finishReason = normalizeFinishReason(choice.FinishReason)
	} else if resp.Output.Text != "" {
		content = resp.Output.Text
		finishReason = normalizeFinishReason(resp.Output.FinishReason)
	} else {
		return nil, fmt.Errorf("no output in response")
	}

	result := &providers.CompletionResponse{
		ID:           resp.RequestID,
		Model:        model,
		Content:      content,
		FinishReason: finishReason,
		Created:      time.Now().Unix(),
	}

	if resp.Usage != nil {
		total := resp.Usage.TotalTokens
		if total == 0 {
			total = resp.Usage.InputTokens + resp.Usage.OutputTokens
		}
		result.Usage = providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      total,
		}
		result.UsageReported = true
	}

	return result, nil
}

// transformStreamChunk normalizes one streamed DashScope frame.
// With incremental_output each frame carries only the new text.
func transformStreamChunk(resp *qwenResponse, model string) *providers.StreamChunk {
	var delta, finishReason string

	if len(resp.Output.Choices) > 0 {
		choice := resp.Output.Choices[0]
		delta = choice.Message.Content
		finishReason = normalizeFinishReason(choice.FinishReason)
	} else {
		delta = resp.Output.Text
		finishReason = normalizeFinishReason(resp.Output.FinishReason)
	}

	chunk := &providers.StreamChunk{
		ID:           resp.RequestID,
		Model:        model,
		Delta:        delta,
		FinishReason: finishReason,
	}

	if resp.Usage != nil && chunk.FinishReason != "" {
		total := resp.Usage.TotalTokens
		if total == 0 {
			total = resp.Usage.InputTokens + resp.Usage.OutputTokens
		}
		chunk.Usage = &providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      total,
		}
	}

	if chunk.Delta == "" && chunk.FinishReason == "" {
		return nil
	}

	return chunk
}

// normalizeFinishReason maps DashScope finish reasons to unified values.
// DashScope reports "null" as a literal string while generation continues.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return providers.FinishReasonStop
	case "length":
		return providers.FinishReasonLength
	case "", "null":
		return ""
	default:
		return reason
	}
}
