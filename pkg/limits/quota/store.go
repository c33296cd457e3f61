package quota

import (
	"context"
	"fmt"
	"time"
)

// Dimension names a quota window.
type Dimension string

const (
	// DimensionMonthly is the billing-cycle request window.
	DimensionMonthly Dimension = "monthly"

	// DimensionMinute is the rolling per-minute request window.
	DimensionMinute Dimension = "minute"
)

// Result is the outcome of one atomic check-and-increment.
type Result struct {
	// Allowed is true when both counters were below their ceilings and
	// have been incremented.
	Allowed bool

	// Exceeded names the dimension that rejected the request
	// (empty when Allowed). The monthly window is checked first.
	Exceeded Dimension

	// MonthlyUsed is the monthly counter after the operation.
	// On rejection it is the current count, unincremented.
	MonthlyUsed int64

	// MinuteUsed is the minute counter after the operation.
	MinuteUsed int64

	// MonthlyReset is when the monthly window rolls over.
	MonthlyReset time.Time

	// MinuteReset is when the current minute window expires.
	MinuteReset time.Time
}

// Store is the shared counter store behind the rate limiter. It is the
// only state mutated concurrently by multiple requests.
//
// CheckAndIncrement must be atomic: two concurrent calls for the same
// account must never both pass a check that only one of them should have
// passed. Backends implement it as a single primitive (a Lua script, an
// upsert statement, one critical section), never as a read followed by a
// conditional write.
type Store interface {
	// CheckAndIncrement checks both window counters for the account
	// against their ceilings and, when both are below, increments both.
	// A lapsed minute window is reset before the increment applies.
	// Counters are never decremented on downstream failure.
	CheckAndIncrement(ctx context.Context, accountID string, monthlyCeiling, minuteCeiling int64) (*Result, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// monthlyKey returns the monthly counter key, anchored to the calendar
// month in UTC. The external billing system owns cycle rollover; a new
// month simply addresses a fresh key.
func monthlyKey(accountID string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("quota:%s:%d:%02d", accountID, now.Year(), int(now.Month()))
}

// minuteKey returns the minute counter key for the current fixed window.
func minuteKey(accountID string, now time.Time) string {
	return fmt.Sprintf("quota:%s:minute:%d", accountID, now.Unix()/60)
}

// monthlyReset returns the start of the next calendar month in UTC.
func monthlyReset(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// minuteReset returns the start of the next minute window.
func minuteReset(now time.Time) time.Time {
	return time.Unix((now.Unix()/60+1)*60, 0).UTC()
}
