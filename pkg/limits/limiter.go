package limits

import (
	"context"
	"log/slog"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/accounts"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits/quota"
)

// warnThreshold is the monthly consumption fraction that triggers a
// warning log, so operators see accounts approaching their ceiling.
const warnThreshold = 0.8

// Limiter enforces per-account request ceilings on top of a quota store.
// It evaluates both windows in a single store operation and translates
// the raw counter result into an admission decision.
type Limiter struct {
	store   quota.Store
	metrics *Metrics
	logger  *slog.Logger
}

// NewLimiter creates a rate limiter backed by the given store.
func NewLimiter(store quota.Store, metrics *Metrics, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		store:   store,
		metrics: metrics,
		logger:  logger.With("component", "limits"),
	}
}

// Evaluate checks the account's monthly and per-minute ceilings and, when
// both hold, consumes one unit from each window. It returns
// LimiterUnavailableError when the store cannot be reached; the caller
// must reject the request in that case rather than waving it through.
func (l *Limiter) Evaluate(ctx context.Context, account *accounts.Account) (*Decision, error) {
	start := time.Now()

	result, err := l.store.CheckAndIncrement(ctx, account.ID, account.MonthlyCeiling, account.PerMinuteCeiling)
	if l.metrics != nil {
		l.metrics.RecordEvaluationDuration(time.Since(start).Seconds())
	}
	if err != nil {
		if l.metrics != nil {
			l.metrics.RecordStoreError()
		}
		l.logger.Error("quota store unreachable, rejecting request",
			"account_id", account.ID,
			"error", err)
		return nil, &LimiterUnavailableError{Cause: err}
	}

	decision := &Decision{
		Allowed:        result.Allowed,
		MonthlyUsed:    result.MonthlyUsed,
		MonthlyCeiling: account.MonthlyCeiling,
		MonthlyReset:   result.MonthlyReset,
		MinuteUsed:     result.MinuteUsed,
		MinuteCeiling:  account.PerMinuteCeiling,
	}

	if l.metrics != nil {
		l.metrics.RecordEvaluation(result.Allowed)
	}

	if !result.Allowed {
		decision.Exceeded = result.Exceeded
		switch result.Exceeded {
		case quota.DimensionMonthly:
			decision.Reset = result.MonthlyReset
		case quota.DimensionMinute:
			decision.Reset = result.MinuteReset
		}
		decision.RetryAfter = time.Until(decision.Reset)
		if decision.RetryAfter < time.Second {
			decision.RetryAfter = time.Second
		}

		if l.metrics != nil {
			l.metrics.RecordRejection(string(result.Exceeded))
		}
		l.logger.Info("request rejected by quota",
			"account_id", account.ID,
			"dimension", string(result.Exceeded),
			"monthly_used", result.MonthlyUsed,
			"monthly_ceiling", account.MonthlyCeiling,
			"minute_used", result.MinuteUsed,
			"minute_ceiling", account.PerMinuteCeiling)
		return decision, nil
	}

	if account.MonthlyCeiling > 0 && float64(result.MonthlyUsed) >= warnThreshold*float64(account.MonthlyCeiling) {
		l.logger.Warn("account approaching monthly ceiling",
			"account_id", account.ID,
			"monthly_used", result.MonthlyUsed,
			"monthly_ceiling", account.MonthlyCeiling)
	}

	return decision, nil
}

// Ping reports whether the quota store is reachable.
func (l *Limiter) Ping(ctx context.Context) error {
	return l.store.Ping(ctx)
}

// Close releases the underlying store.
func (l *Limiter) Close() error {
	return l.store.Close()
}
