package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
)

// Config contains retention configuration.
type Config struct {
	// RetentionDays is how long records are kept. Zero disables
	// pruning entirely.
	// Default: 90
	RetentionDays int

	// PruneSchedule is a standard cron expression for scheduled
	// pruning, e.g. "0 3 * * *" for daily at 03:00. Empty disables the
	// scheduler.
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner deletes usage records past the retention window. The gateway
// itself never mutates records; retention is the one sanctioned delete
// path, and it only removes whole records past their keep-by date.
type Pruner struct {
	storage usage.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a pruner over the given storage backend.
func NewPruner(storage usage.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "usage.retention"),
	}
}

// Prune deletes records older than the retention window and returns how
// many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	start := time.Now()
	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention prune failed: %w", err)
	}

	if deleted > 0 {
		p.logger.Info("retention prune completed",
			"deleted_count", deleted,
			"cutoff", cutoff,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return deleted, nil
}
