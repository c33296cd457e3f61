// Package limits enforces per-account request ceilings across two
// windows: a monthly billing-cycle quota and a rolling per-minute rate.
//
// The Limiter evaluates both windows in one atomic store operation (see
// the quota subpackage). The monthly window is checked before the minute
// window, so an account out of monthly quota always sees a monthly
// rejection even when it is also sending too fast. Admission consumes one
// unit from each window and is never refunded: a request that later fails
// upstream still counted against the account.
//
// The limiter fails closed. When the counter store is unreachable,
// Evaluate returns LimiterUnavailableError and the caller rejects the
// request; admitting without a counter check would leave spend unbounded.
package limits
