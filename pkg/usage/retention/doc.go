// Package retention prunes usage records past their keep-by date.
//
// The Pruner deletes in one pass against the storage backend; the
// Scheduler drives it on a standard cron expression. Retention zero
// keeps records forever.
package retention
