package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
)

// Config contains configuration for the usage recorder.
type Config struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds a single storage write and the wait to
	// enqueue when the buffer is full.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes usage records asynchronously so the client-visible
// response path never waits on storage. Records may be lost on a crash
// before the worker drains them; that loss is bounded by the buffer
// size and accepted.
type Recorder struct {
	storage    usage.Storage
	config     *Config
	recordChan chan *usage.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a recorder over the given storage backend and
// starts its background writer.
func NewRecorder(storage usage.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *usage.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "usage.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("usage recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues one usage record for writing. A missing ID or
// timestamp is filled in. The call returns once the record is enqueued;
// it only blocks when the buffer is full, and gives up after
// WriteTimeout rather than stalling the caller indefinitely.
func (r *Recorder) Record(record *usage.Record) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	select {
	case r.recordChan <- record:
		return nil
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record",
			"record_id", record.ID,
			"account_id", record.AccountID,
		)
		return usage.NewRecorderError(record.ID, context.Canceled)
	case <-time.After(r.config.WriteTimeout):
		r.logger.Error("usage record channel full, dropping record",
			"record_id", record.ID,
			"account_id", record.AccountID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return usage.NewRecorderError(record.ID, context.DeadlineExceeded)
	}
}

// Close drains the buffer and waits for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down usage recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("usage recorder shut down complete")
	return nil
}

// worker drains the record channel and writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining usage records before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord writes a single record to storage.
func (r *Recorder) writeRecord(record *usage.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store usage record",
			"record_id", record.ID,
			"account_id", record.AccountID,
			"error", err,
		)
		return
	}

	duration := time.Since(start)
	r.logger.Debug("usage recorded",
		"record_id", record.ID,
		"account_id", record.AccountID,
		"provider", record.Provider,
		"total_tokens", record.TotalTokens,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow usage write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
		)
	}
}
