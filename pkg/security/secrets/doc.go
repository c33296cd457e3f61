// Package secrets resolves upstream provider credentials by reference.
//
// Gateway configuration names credentials ("openai-api-key") instead of
// embedding them. The Resolver walks a provider chain, file-mounted
// secrets first and environment variables as the fallback, and returns
// the first hit. File secrets require 0600/0400 permissions and reload
// automatically on rotation when watching is enabled.
package secrets
