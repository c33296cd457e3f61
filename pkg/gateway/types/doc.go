// Package types defines the gateway's inbound and outbound HTTP bodies.
//
// The request and response shapes follow the OpenAI Chat Completions
// API so existing client SDKs work unchanged. Errors use a fixed
// unified shape regardless of which stage of the request lifecycle
// failed.
package types
