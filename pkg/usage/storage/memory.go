package storage

import (
	"context"
	"sync"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
)

// MemoryStorage implements usage.Storage in process memory. It serves
// tests and ephemeral deployments where record loss on restart is
// acceptable.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*usage.Record
}

// NewMemoryStorage creates an in-memory usage store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends one record.
func (s *MemoryStorage) Store(ctx context.Context, record *usage.Record) error {
	if err := ctx.Err(); err != nil {
		return usage.NewStorageError("memory", "store", err)
	}

	copied := *record
	s.mu.Lock()
	s.records = append(s.records, &copied)
	s.mu.Unlock()
	return nil
}

// Query returns records matching the filter, newest first.
func (s *MemoryStorage) Query(ctx context.Context, q *usage.Query) ([]*usage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, usage.NewStorageError("memory", "query", err)
	}
	if q == nil {
		q = &usage.Query{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*usage.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if q.AccountID != "" && record.AccountID != q.AccountID {
			continue
		}
		if q.Provider != "" && record.Provider != q.Provider {
			continue
		}
		if !q.Since.IsZero() && record.Timestamp.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && !record.Timestamp.Before(q.Until) {
			continue
		}

		copied := *record
		matched = append(matched, &copied)
		if q.Limit > 0 && len(matched) >= q.Limit {
			break
		}
	}

	return matched, nil
}

// Count returns the number of stored records.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// DeleteBefore removes records older than the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if record.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

// Close releases the stored records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
