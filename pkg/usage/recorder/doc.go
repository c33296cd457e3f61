// Package recorder writes usage records off the response path.
//
// Record enqueues onto a buffered channel and returns; a single
// background worker drains the channel into storage. Close drains the
// remaining buffer before returning, so a graceful shutdown loses
// nothing. Per-account ordering of records is not guaranteed and not
// required by any reader.
package recorder
