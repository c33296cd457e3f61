package google

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// Provider is the Google adapter. It implements providers.Provider against
// the Generative Language API (Gemini).
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Google provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		config.Name = providers.ProviderGoogle
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Google",
		}
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
	}

	slog.Info("Google provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// SendCompletion sends a non-streaming generateContent request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	googleReq := transformRequest(req)

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		p.Config().BaseURL, req.Model, p.Config().APIKey)

	var googleResp googleResponse
	if err := p.DoJSONRequest(ctx, "POST", url, googleReq, &googleResp, map[string]string{
		"Content-Type": "application/json",
	}); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&googleResp, req.Model)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: p.Name(),
			Cause:    err,
		}
	}

	// The Generative Language API does not return a response ID.
	resp.ID = uuid.New().String()

	slog.Debug("completion request succeeded",
		"provider", p.Name(),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return resp, nil
}

// StreamCompletion sends a streaming generateContent request (alt=sse).
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	googleReq := transformRequest(req)

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		p.Config().BaseURL, req.Model, p.Config().APIKey)

	stream, err := newStreamReader(ctx, p.HTTPProvider, url, googleReq, uuid.New().String(), req.Model)
	if err != nil {
		return nil, err
	}

	return providers.PumpStream(ctx, p.HTTPProvider, stream), nil
}

// validateRequest validates the unified request before dispatch.
func validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{
			Field:   "request",
			Message: "request cannot be nil",
		}
	}
	if req.Model == "" {
		return &providers.ValidationError{
			Field:   "model",
			Message: "model is required",
		}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}
	return nil
}
