package limits

import (
	"fmt"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits/quota"
)

// Decision is the outcome of one rate-limiter evaluation. Admission is
// final: a downstream provider failure never refunds the counters, since
// the attempt itself consumed capacity.
type Decision struct {
	// Allowed is true when the request was admitted and both counters
	// were incremented.
	Allowed bool

	// Exceeded names the rejected dimension (monthly or minute);
	// empty when Allowed.
	Exceeded quota.Dimension

	// Reset is when the exceeded window rolls over (zero when Allowed).
	Reset time.Time

	// RetryAfter is how long the caller should wait before retrying
	// (zero when Allowed).
	RetryAfter time.Duration

	// MonthlyUsed is the monthly counter after the evaluation.
	MonthlyUsed int64

	// MonthlyCeiling is the account's monthly request ceiling.
	MonthlyCeiling int64

	// MonthlyReset is when the monthly window rolls over.
	MonthlyReset time.Time

	// MinuteUsed is the minute counter after the evaluation.
	MinuteUsed int64

	// MinuteCeiling is the account's per-minute request ceiling.
	MinuteCeiling int64
}

// MonthlyRemaining returns how many monthly requests remain.
func (d *Decision) MonthlyRemaining() int64 {
	remaining := d.MonthlyCeiling - d.MonthlyUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LimiterUnavailableError is returned when the shared counter store is
// unreachable. The limiter fails closed: silently admitting without a
// counter check would be an unbounded cost exposure.
type LimiterUnavailableError struct {
	// Cause is the underlying store error
	Cause error
}

// Error implements the error interface.
func (e *LimiterUnavailableError) Error() string {
	return fmt.Sprintf("quota store unavailable: %v", e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *LimiterUnavailableError) Unwrap() error {
	return e.Cause
}
