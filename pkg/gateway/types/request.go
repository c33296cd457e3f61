package types

import (
	"fmt"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// ChatCompletionRequest is the inbound unified request body. The shape
// follows the OpenAI Chat Completions API so existing SDKs work against
// the gateway unchanged; adapters translate it to each upstream's wire
// format.
type ChatCompletionRequest struct {
	// Model is the model to use (e.g. "gpt-4o", "claude-3-5-sonnet").
	// Its prefix selects the upstream provider.
	Model string `json:"model"`

	// Messages is the ordered conversation history.
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0). Optional.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens caps the generated length. Optional.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0). Optional.
	TopP *float64 `json:"top_p,omitempty"`

	// Stream enables server-sent events streaming. Optional.
	Stream bool `json:"stream,omitempty"`

	// Stop is a list of sequences that halt generation (max 4). Optional.
	Stop []string `json:"stop,omitempty"`

	// User is an end-user identifier for abuse tracking. Optional.
	User string `json:"user,omitempty"`
}

// Message is a single role-tagged message.
type Message struct {
	// Role is the author ("system", "user", "assistant").
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Validate checks required fields and value ranges.
func (r *ChatCompletionRequest) Validate() error {
	if r.Model == "" {
		return &ValidationError{Field: "model", Message: "model is required"}
	}
	if len(r.Messages) == 0 {
		return &ValidationError{Field: "messages", Message: "messages must contain at least one message"}
	}
	if r.Temperature != nil && (*r.Temperature < 0.0 || *r.Temperature > 2.0) {
		return &ValidationError{Field: "temperature", Message: "temperature must be between 0.0 and 2.0"}
	}
	if r.TopP != nil && (*r.TopP < 0.0 || *r.TopP > 1.0) {
		return &ValidationError{Field: "top_p", Message: "top_p must be between 0.0 and 1.0"}
	}
	if r.MaxTokens != nil && *r.MaxTokens < 1 {
		return &ValidationError{Field: "max_tokens", Message: "max_tokens must be greater than 0"}
	}
	if len(r.Stop) > 4 {
		return &ValidationError{Field: "stop", Message: "stop sequences must not exceed 4"}
	}

	for i, msg := range r.Messages {
		if msg.Role == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "message role is required",
			}
		}
		switch msg.Role {
		case providers.RoleSystem, providers.RoleUser, providers.RoleAssistant:
		default:
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: fmt.Sprintf("unsupported role %q", msg.Role),
			}
		}
	}

	return nil
}

// ToUnified converts the inbound request to the internal unified shape.
func (r *ChatCompletionRequest) ToUnified() *providers.CompletionRequest {
	unified := &providers.CompletionRequest{
		Model:  r.Model,
		Stream: r.Stream,
		Stop:   r.Stop,
		User:   r.User,
	}

	unified.Messages = make([]providers.Message, len(r.Messages))
	for i, msg := range r.Messages {
		unified.Messages[i] = providers.Message{Role: msg.Role, Content: msg.Content}
	}

	if r.Temperature != nil {
		unified.Temperature = *r.Temperature
	}
	if r.MaxTokens != nil {
		unified.MaxTokens = *r.MaxTokens
	}
	if r.TopP != nil {
		unified.TopP = *r.TopP
	}

	return unified
}

// ValidationError represents a request validation failure.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
