// Package tokens estimates token counts from character length.
//
// Estimation is a fallback, not a source of truth. Providers report
// actual usage in most responses; the estimator only fills the gap when
// a response or a terminated stream carries no usage block, and every
// figure it produces is flagged as estimated in the usage record.
//
// The approximation is characters divided by a per-model-family ratio
// (roughly four characters per token for English prose), plus small fixed
// overheads for message framing. That keeps the error within a few
// percent for typical chat traffic without shipping a tokenizer per
// provider.
package tokens
