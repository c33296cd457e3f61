package providers

import "time"

// Message is a single role-tagged message in the unified schema.
type Message struct {
	// Role identifies the sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for one exchange.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the completion
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is prompt + completion
	TotalTokens int `json:"total_tokens"`
}

// CompletionRequest is the unified completion request. Adapters translate it
// to their provider's wire format.
type CompletionRequest struct {
	// Model is the model identifier (e.g. "gpt-4", "claude-3-opus")
	Model string `json:"model"`

	// Messages is the ordered conversation history
	Messages []Message `json:"messages"`

	// Temperature controls randomness (0.0 to 2.0)
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens caps the generated length
	MaxTokens int `json:"max_tokens,omitempty"`

	// TopP controls nucleus sampling (0.0 to 1.0)
	TopP float64 `json:"top_p,omitempty"`

	// Stream requests an incremental response
	Stream bool `json:"stream,omitempty"`

	// Stop sequences halt generation
	Stop []string `json:"stop,omitempty"`

	// User is an optional end-user identifier for abuse monitoring
	User string `json:"user,omitempty"`
}

// CompletionResponse is the unified completion response, normalized from the
// provider wire format.
type CompletionResponse struct {
	// ID is the upstream response identifier
	ID string `json:"id"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// Content is the generated text
	Content string `json:"content"`

	// FinishReason indicates why generation stopped
	// (stop, length, content_filter)
	FinishReason string `json:"finish_reason"`

	// Usage contains token counts as reported by the provider.
	// Zero when the provider omitted usage; see UsageReported.
	Usage TokenUsage `json:"usage"`

	// UsageReported is true when the provider included token counts.
	// When false the caller estimates usage from text length.
	UsageReported bool `json:"-"`

	// Created is the Unix timestamp of the response
	Created int64 `json:"created"`
}

// StreamChunk is a single unified delta in a streaming response.
type StreamChunk struct {
	// ID is the response identifier (stable across chunks)
	ID string `json:"id"`

	// Model is the model generating the response
	Model string `json:"model"`

	// Delta is the incremental content carried by this chunk
	Delta string `json:"delta"`

	// FinishReason is set on the final chunk
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage is set on the final chunk when the provider reports it
	Usage *TokenUsage `json:"usage,omitempty"`

	// Error is set if the stream failed; it is always the last chunk sent
	Error error `json:"-"`
}

// ProviderHealth tracks upstream health derived from request outcomes.
type ProviderHealth struct {
	// IsHealthy is false after repeated consecutive failures
	IsHealthy bool

	// LastError is the most recent failure (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failed requests
	ConsecutiveFailures int

	// LastSuccess is the timestamp of the last successful request
	LastSuccess time.Time

	// TotalRequests counts all requests sent upstream
	TotalRequests int64

	// FailedRequests counts failed requests
	FailedRequests int64
}

// ProviderConfig configures a single provider adapter.
type ProviderConfig struct {
	// Name is the provider identifier (openai, anthropic, google, qwen)
	Name string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the resolved upstream credential
	APIKey string

	// Timeout bounds a non-streaming call and the gap between
	// successive stream chunks
	Timeout time.Duration

	// MaxIdleConns is the connection pool size
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host pool size
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays pooled
	IdleConnTimeout time.Duration
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// Provider name constants. The set is closed: routing, pricing, and
// configuration all key on these four names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderQwen      = "qwen"
)
