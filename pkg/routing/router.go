package routing

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/accounts"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
)

// Route maps a case-sensitive model-name prefix to a provider name.
type Route struct {
	// Prefix is the literal model-name prefix (e.g. "gpt-")
	Prefix string

	// Provider is the provider name the prefix routes to
	Provider string
}

// DefaultRoutes is the static prefix table for the four upstream providers.
func DefaultRoutes() []Route {
	return []Route{
		{Prefix: "gpt-", Provider: providers.ProviderOpenAI},
		{Prefix: "o1-", Provider: providers.ProviderOpenAI},
		{Prefix: "claude-", Provider: providers.ProviderAnthropic},
		{Prefix: "gemini-", Provider: providers.ProviderGoogle},
		{Prefix: "qwen-", Provider: providers.ProviderQwen},
		{Prefix: "qwen2-", Provider: providers.ProviderQwen},
	}
}

// Router resolves a model name to a provider adapter. Matching is
// case-sensitive literal-prefix lookup; ties resolve longest-prefix-wins so
// a sub-family prefix can override its parent. Resolution is a pure lookup
// with no side effects.
type Router struct {
	// routes is kept sorted by descending prefix length
	routes []Route

	// registry maps provider names to their adapters
	registry map[string]providers.Provider

	logger *slog.Logger
}

// NewRouter creates a router over a provider registry using the default
// prefix table.
func NewRouter(registry map[string]providers.Provider, logger *slog.Logger) *Router {
	return NewRouterWithRoutes(registry, DefaultRoutes(), logger)
}

// NewRouterWithRoutes creates a router with an explicit prefix table.
func NewRouterWithRoutes(registry map[string]providers.Provider, routes []Route, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	return &Router{
		routes:   sorted,
		registry: registry,
		logger:   logger.With("component", "routing"),
	}
}

// Resolve returns the provider name for a model, or UnknownModelError.
func (r *Router) Resolve(model string) (string, error) {
	for _, route := range r.routes {
		if strings.HasPrefix(model, route.Prefix) {
			return route.Provider, nil
		}
	}
	return "", &UnknownModelError{Model: model}
}

// Route resolves a model for an account and returns the provider adapter.
// The enabled-provider policy check happens here, before any network call:
// a tier that does not enable the resolved provider gets
// ProviderNotAllowedError regardless of whether the adapter exists.
func (r *Router) Route(account *accounts.Account, model string) (providers.Provider, error) {
	name, err := r.Resolve(model)
	if err != nil {
		return nil, err
	}

	if !account.ProviderEnabled(name) {
		r.logger.Debug("provider not enabled for account",
			"account", account.ID,
			"provider", name,
			"tier", account.Tier.String(),
		)
		return nil, &ProviderNotAllowedError{
			AccountID: account.ID,
			Provider:  name,
			Tier:      account.Tier.String(),
		}
	}

	provider, ok := r.registry[name]
	if !ok {
		return nil, &ProviderUnavailableError{Provider: name}
	}

	return provider, nil
}
