// Package qwen implements the Qwen adapter for Alibaba's DashScope
// text-generation API. Messages nest under an input envelope, generation
// parameters are renamed, and streaming uses the X-DashScope-SSE header
// with incremental_output frames.
package qwen
