// Package quota implements the shared counter store behind the rate
// limiter: per-account monthly and per-minute request counters with
// atomic check-and-increment semantics.
//
// Three backends share the Store interface. RedisStore is the production
// backend; a Lua script makes the whole evaluation one atomic round trip,
// and counters are shared across gateway instances. SQLiteStore keeps
// durable counters for single-node deployments. MemoryStore serves tests.
//
// Windows are addressed by key: a monthly counter lives under the
// account's current calendar month and a minute counter under the current
// unix-minute, so windows reset by key rotation rather than by mutation.
package quota
