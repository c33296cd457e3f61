// Package openai implements the OpenAI adapter for the Chat Completions
// API. The unified schema mirrors the OpenAI shape, so transformation is a
// near-identity mapping; streaming parses the data-line SSE protocol with
// the [DONE] sentinel.
package openai
