// Package security holds credential handling for the gateway.
//
// The secrets sub-package resolves upstream provider credentials
// through a provider chain (files first, environment fallback), so API
// keys stay out of the configuration file. Transport security and
// caller authentication are not handled here: TLS terminates at the
// fronting proxy, which also authenticates callers and forwards the
// account identity header.
package security
