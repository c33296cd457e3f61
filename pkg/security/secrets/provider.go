package secrets

import "context"

// Provider retrieves secrets from one backend. Providers are chained by
// the Resolver with priority-based fallback.
type Provider interface {
	// GetSecret retrieves a secret by name. Returns an error when the
	// secret is missing or unreadable.
	GetSecret(ctx context.Context, name string) (string, error)

	// Provider returns the backend name ("env", "file").
	Provider() string

	// Supports reports whether this backend may hold the named secret,
	// used to skip backends during chain resolution.
	Supports(name string) bool
}

// RefreshableProvider can reload secrets without a restart, e.g. after
// a mounted secret file is rotated.
type RefreshableProvider interface {
	Provider

	// Refresh discards any cached values so the next read hits the
	// backend.
	Refresh(ctx context.Context) error
}
