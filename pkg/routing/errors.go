package routing

import "fmt"

// UnknownModelError is returned when no configured prefix matches the
// requested model name.
type UnknownModelError struct {
	// Model is the requested model name
	Model string
}

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no provider configured for model %q", e.Model)
}

// ProviderNotAllowedError is returned when the resolved provider is not in
// the account's enabled-provider set. This is a plan-tier policy rejection,
// raised before any network call.
type ProviderNotAllowedError struct {
	// AccountID is the requesting account
	AccountID string

	// Provider is the resolved provider name
	Provider string

	// Tier is the account's plan tier name
	Tier string
}

// Error implements the error interface.
func (e *ProviderNotAllowedError) Error() string {
	return fmt.Sprintf("provider %q is not enabled for account %q on tier %q",
		e.Provider, e.AccountID, e.Tier)
}

// ProviderUnavailableError is returned when a route resolves to a provider
// that has no registered adapter.
type ProviderUnavailableError struct {
	// Provider is the resolved provider name
	Provider string
}

// Error implements the error interface.
func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider %q is not configured", e.Provider)
}
