// Package storage provides usage record persistence backends.
//
// SQLiteStorage is the durable backend: WAL mode for concurrent reads
// during writes, indexed by account and timestamp for the analytics read
// path. MemoryStorage backs tests and ephemeral deployments.
package storage
