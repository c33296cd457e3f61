// Package providers implements the unified abstraction over the four
// upstream completion services (OpenAI, Anthropic, Google, Qwen).
//
// # Overview
//
// Each adapter translates the unified request/response schema to its
// provider's wire format and back, including streamed responses. The base
// HTTPProvider supplies pooled connections, timeout handling, typed error
// mapping, and health tracking; adapters embed it and add transformation.
//
// # Basic Usage
//
//	config := providers.ProviderConfig{
//	    Name:    providers.ProviderOpenAI,
//	    BaseURL: "https://api.openai.com/v1",
//	    APIKey:  os.Getenv("OPENAI_API_KEY"),
//	    Timeout: 60 * time.Second,
//	}
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	resp, err := provider.SendCompletion(ctx, &providers.CompletionRequest{
//	    Model: "gpt-4",
//	    Messages: []providers.Message{
//	        {Role: providers.RoleUser, Content: "Hello!"},
//	    },
//	})
//
// # Streaming
//
//	chunks, err := provider.StreamCompletion(ctx, req)
//	if err != nil {
//	    return err
//	}
//	for chunk := range chunks {
//	    if chunk.Error != nil {
//	        return chunk.Error
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// Chunk order matches upstream order exactly, and the channel is closed
// exactly once: on provider completion, stream exhaustion, timeout, or
// context cancellation, whichever happens first.
//
// # Error Handling
//
// Failures surface as typed errors so callers can translate them without
// string matching:
//
//   - ProviderError: upstream returned a non-2xx status
//   - AuthError: credential rejected (401/403)
//   - UpstreamRateLimitError: provider-side 429 with Retry-After
//   - TimeoutError: call or inter-chunk gap exceeded the timeout
//   - ParseError: malformed provider payload
//   - ValidationError: invalid unified request, caught before dispatch
//   - StreamError: failure while consuming a stream
//
// # No Retries
//
// Requests are dispatched exactly once. Quota is consumed before dispatch
// and never refunded, so replaying a failed completion could bill an
// account twice for one request. Transient failures are surfaced to the
// caller, which decides whether to resubmit.
package providers
