package quota

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process quota store for tests and single-node
// deployments that do not need fleet-wide counters. The whole evaluation
// runs under one mutex, which gives the same atomicity as the Redis script
// within a single process.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64

	// now is swappable for tests
	now func() time.Time
}

// NewMemoryStore creates an in-memory quota store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]int64),
		now:      time.Now,
	}
}

// CheckAndIncrement checks both ceilings and increments both counters
// inside a single critical section.
func (s *MemoryStore) CheckAndIncrement(ctx context.Context, accountID string, monthlyCeiling, minuteCeiling int64) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	mKey := monthlyKey(accountID, now)
	nKey := minuteKey(accountID, now)

	monthly := s.counters[mKey]
	minute := s.counters[nKey]

	result := &Result{
		MonthlyUsed:  monthly,
		MinuteUsed:   minute,
		MonthlyReset: monthlyReset(now),
		MinuteReset:  minuteReset(now),
	}

	if monthly >= monthlyCeiling {
		result.Exceeded = DimensionMonthly
		return result, nil
	}
	if minute >= minuteCeiling {
		result.Exceeded = DimensionMinute
		return result, nil
	}

	s.counters[mKey] = monthly + 1
	s.counters[nKey] = minute + 1

	result.Allowed = true
	result.MonthlyUsed = monthly + 1
	result.MinuteUsed = minute + 1
	return result, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close releases stale window counters.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = make(map[string]int64)
	return nil
}
