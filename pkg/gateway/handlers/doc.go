// Package handlers implements the gateway's HTTP endpoints.
//
// ChatHandler owns the request lifecycle for POST /v1/chat/completions:
// identity, rate-limit admission, provider routing, dispatch (streaming
// or buffered), response translation, and usage recording. HealthHandler
// serves the liveness and readiness probes.
package handlers
