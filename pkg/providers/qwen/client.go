package qwen

import (
	"context"
	"log/slog"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// Provider is the Qwen adapter. It implements providers.Provider against
// Alibaba's DashScope text-generation API.
type Provider struct {
	*providers.HTTPProvider
}

// generationPath is the DashScope text-generation endpoint.
const generationPath = "/api/v1/services/aigc/text-generation/generation"

// NewProvider creates a new Qwen provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		config.Name = providers.ProviderQwen
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://dashscope.aliyuncs.com"
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Qwen",
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

	slog.Info("Qwen provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
	)

	return p, nil
}

// SendCompletion sends a non-streaming generation request to DashScope.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	qwenReq := transformRequest(req, false)

	url := p.Config().BaseURL + generationPath
	var qwenResp qwenResponse
	if err := p.DoJSONRequest(ctx, "POST", url, qwenReq, &qwenResp, p.headers(false)); err != nil {
		return nil, err
	}

	resp, err := transformResponse(&qwenResp, req.Model)
	if err != nil {
		return nil, &providers.ParseError{
			Provider: p.Name(),
			Cause:    err,
		}
	}

	slog.Debug("completion request succeeded",
		"provider", p.Name(),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return resp, nil
}

// StreamCompletion sends a streaming generation request to DashScope.
// Streaming is selected with the X-DashScope-SSE header plus
// incremental_output so each frame carries only new text.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (<-chan *providers.StreamChunk, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	qwenReq := transformRequest(req, true)

	url := p.Config().BaseURL + generationPath
	stream, err := newStreamReader(ctx, p.HTTPProvider, url, qwenReq, p.headers(true))
	if err != nil {
		return nil, err
	}

	return providers.PumpStream(ctx, p.HTTPProvider, stream), nil
}

// headers returns the DashScope headers.
func (p *Provider) headers(stream bool) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + p.Config().APIKey,
		"Content-Type":  "application/json",
	}
	if stream {
		h["X-DashScope-SSE"] = "enable"
		h["Accept"] = "text/event-stream"
	}
	return h
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
