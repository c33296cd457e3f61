package google

import (
	"fmt"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// Google Generative AI API types

// googleRequest represents a generateContent request.
type googleRequest struct {
	Contents          []googleContent   `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *googleContent    `json:"systemInstruction,omitempty"`
}

// googleContent is a role-tagged list of parts.
type googleContent struct {
	Role  string       `json:"role"`
	Parts []googlePart `json:"parts"`
}

// googlePart carries one text fragment.
type googlePart struct {
	Text string `json:"text"`
}

// generationConfig holds the renamed generation parameters.
type generationConfig struct {
	Temperature     float64  `json:"temperature,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// googleResponse represents a generateContent response.
type googleResponse struct {
	Candidates    []googleCandidate `json:"candidates"`
	UsageMetadata *usageMetadata    `json:"usageMetadata,omitempty"`
}

// googleCandidate is one generated candidate.
type googleCandidate struct {
	Content      googleContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
	Index        int           `json:"index,omitempty"`
}

// usageMetadata carries token counts in Google's naming.
type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// transformRequest translates a unified request to Google wire format.
// The system message becomes systemInstruction, assistant turns map to the
// "model" role, and generation parameters are renamed into
// generationConfig.
func transformRequest(req *providers.CompletionRequest) *googleRequest {
	out := &googleRequest{
		Contents: make([]googleContent, 0, len(req.Messages)),
	}

	for _, msg := range req.Messages {
		if msg.Role == providers.RoleSystem {
			out.SystemInstruction = &googleContent{
				Role:  "user",
				Parts: []googlePart{{Text: msg.Content}},
			}
			continue
		}

		role := msg.Role
		if role == providers.RoleAssistant {
			role = "model"
		}
		out.Contents = append(out.Contents, googleContent{
			Role:  role,
			Parts: []googlePart{{Text: msg.Content}},
		})
	}

	if req.Temperature != 0 || req.TopP != 0 || req.MaxTokens != 0 || len(req.Stop) > 0 {
		out.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxTokens,
			StopSequences:   req.Stop,
		}
	}

	return out
}

// transformResponse normalizes a Google response to the unified shape.
// Google does not return a response ID, so the caller assigns one.
func transformResponse(resp *googleResponse, model string) (*providers.CompletionResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	var content strings.Builder
	for _, part := range candidate.Content.Parts {
		content.WriteString(part.Text)
	}

	result := &providers.CompletionResponse{
		Model:        model,
		Content:      content.String(),
		FinishReason: normalizeFinishReason(candidate.FinishReason),
		Created:      time.Now().Unix(),
	}

	if resp.UsageMetadata != nil {
		result.Usage = providers.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
		result.UsageReported = true
	}

	return result, nil
}

// transformStreamChunk normalizes one streamed generateContent frame.
// Returns nil for frames with no content and no finish reason.
func transformStreamChunk(resp *googleResponse, id, model string) *providers.StreamChunk {
	if len(resp.Candidates) == 0 {
		return nil
	}

	candidate := resp.Candidates[0]
	var delta strings.Builder
	for _, part := range candidate.Content.Parts {
		delta.WriteString(part.Text)
	}

	chunk := &providers.StreamChunk{
		ID:           id,
		Model:        model,
		Delta:        delta.String(),
		FinishReason: normalizeFinishReason(candidate.FinishReason),
	}

	if resp.UsageMetadata != nil && chunk.FinishReason != "" {
		chunk.Usage = &providers.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	if chunk.Delta == "" && chunk.FinishReason == "" {
		return nil
	}

	return chunk
}

// normalizeFinishReason maps Google finish reasons to unified values.
// SAFETY and RECITATION both indicate filtered content.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return providers.FinishReasonStop
	case "MAX_TOKENS":
		return providers.FinishReasonLength
	case "SAFETY", "RECITATION":
		return providers.FinishReasonContentFilter
	case "":
		return ""
	default:
		return strings.ToLower(reason)
	}
}
