package providers

import "context"

// Provider is the interface implemented by every upstream adapter
// (OpenAI, Anthropic, Google, Qwen). It presents a unified completion
// contract; each adapter owns the translation to and from its wire format.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return promptly when
// the context is cancelled, closing the upstream connection.
type Provider interface {
	// SendCompletion sends a non-streaming completion request.
	// The unified request is translated to the provider wire format, sent
	// upstream, and the response is normalized back to the unified shape.
	//
	// The call is made exactly once: transient upstream failures are
	// surfaced to the caller rather than retried, since the attempt has
	// already consumed account quota and a retry could double-bill.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// StreamCompletion sends a streaming completion request and returns a
	// channel of unified deltas. The channel preserves upstream chunk order
	// and is closed exactly once, when the provider signals completion, the
	// chunks are exhausted, or the context is cancelled.
	//
	// If an error occurs mid-stream it is delivered as the final chunk's
	// Error field before the channel closes.
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan *StreamChunk, error)

	// Name returns the provider's configured name (e.g. "openai").
	Name() string

	// Config returns the provider's configuration.
	Config() ProviderConfig

	// IsHealthy reports whether recent upstream calls have been succeeding.
	IsHealthy() bool

	// Health returns detailed health information.
	Health() ProviderHealth

	// Close releases pooled connections. The provider must not be used
	// after Close returns.
	Close() error
}

// StreamReader abstracts the provider-native SSE protocol. Each adapter
// supplies its own implementation that parses its event framing.
type StreamReader interface {
	// Read returns the next unified chunk, nil and io.EOF at normal end of
	// stream, or nil and an error on failure.
	Read(ctx context.Context) (*StreamChunk, error)

	// Close closes the underlying response body.
	Close() error
}
