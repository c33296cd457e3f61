// Package anthropic implements the Anthropic adapter for the Messages API.
// System messages move to the top-level system field, assistant turns keep
// their role, and streaming parses the event/data SSE protocol
// (message_start, content_block_delta, message_delta, message_stop).
package anthropic
