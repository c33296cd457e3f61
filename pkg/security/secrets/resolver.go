package secrets

import (
	"context"
	"fmt"
	"log/slog"
)

// Resolver chains secret providers with priority-based fallback: the
// first backend that supports a name and returns a value wins. Upstream
// provider credentials are referenced by name in the gateway config
// ("openai-api-key") and resolved here at startup.
type Resolver struct {
	providers []Provider
	logger    *slog.Logger
}

// NewResolver creates a resolver over the given providers, tried in
// order.
func NewResolver(providers ...Provider) *Resolver {
	return &Resolver{
		providers: providers,
		logger:    slog.Default().With("component", "secrets"),
	}
}

// GetSecret resolves a secret through the chain.
func (r *Resolver) GetSecret(ctx context.Context, name string) (string, error) {
	var lastErr error
	for _, provider := range r.providers {
		if !provider.Supports(name) {
			continue
		}

		value, err := provider.GetSecret(ctx, name)
		if err != nil {
			lastErr = err
			r.logger.Debug("secret backend miss",
				"provider", provider.Provider(),
				"name", redactName(name),
				"error", err,
			)
			continue
		}

		r.logger.Debug("secret resolved",
			"provider", provider.Provider(),
			"name", redactName(name),
		)
		return value, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to resolve secret %q: %w", name, lastErr)
	}
	return "", fmt.Errorf("secret not found: %q", name)
}

// Refresh reloads every refreshable backend.
func (r *Resolver) Refresh(ctx context.Context) error {
	for _, provider := range r.providers {
		refreshable, ok := provider.(RefreshableProvider)
		if !ok {
			continue
		}
		if err := refreshable.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to refresh %s secrets: %w", provider.Provider(), err)
		}
	}
	return nil
}

// redactName keeps logs useful without leaking which credentials exist
// in full.
func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
