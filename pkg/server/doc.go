// Package server ties the gateway together: routes, middleware chain,
// and server lifecycle.
//
// # Routes
//
//   - POST /v1/chat/completions - chat completion (streaming and non-streaming)
//   - GET /health - liveness probe (always 200)
//   - GET /ready - readiness probe (quota store reachability, provider health)
//   - GET /metrics - Prometheus metrics (when enabled)
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//  1. Recovery: converts panics to 500
//  2. RequestID: assigns or propagates the correlation ID
//  3. Logging: one structured line per request
//
// # Graceful Shutdown
//
// Start blocks until the context is cancelled or SIGTERM/SIGINT
// arrives, then drains in-flight requests up to the configured
// shutdown timeout. TLS termination is left to the fronting proxy,
// which also authenticates callers and sets the account header.
package server
