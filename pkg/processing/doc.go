// Package processing holds the post-dispatch accounting helpers.
//
//   - tokens: chars-per-token estimation for providers that omit usage
//   - costs: per-1000-token USD cost calculation with prefix fallback
//
// Both are deliberately deterministic. Estimated counts are approximate
// and flagged as such on the usage record; exact counting would need
// each provider's tokenizer.
package processing
