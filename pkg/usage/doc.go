// Package usage defines the append-only usage record and its storage
// contract.
//
// One record is written per completed attempt, successful or failed at
// the upstream, carrying token counts, latency, estimated cost, and the
// upstream status. Quota-rejected requests never produce a record: a
// rejection is not billable and never reached a provider.
//
// Subpackages: recorder writes records asynchronously off the response
// path, storage provides SQLite and in-memory backends, retention prunes
// old records on a schedule.
package usage
