package quota

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // CGo-free SQLite driver
)

// SQLiteStore is a durable single-node quota store. It serves deployments
// that run one gateway instance and want counters to survive restarts
// without operating Redis.
//
// Atomicity comes from an immediate transaction: SQLite serializes
// writers, so the read-check-increment runs as one unit and concurrent
// evaluations for the same account cannot interleave.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

const quotaSchema = `
CREATE TABLE IF NOT EXISTS quota_counters (
	key   TEXT PRIMARY KEY,
	count INTEGER NOT NULL DEFAULT 0,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quota_expires ON quota_counters(expires_at);
`

// NewSQLiteStore opens (creating if needed) a SQLite quota store at path.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open quota database: %w", err)
	}

	// A single writer connection avoids SQLITE_BUSY churn under load.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(quotaSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create quota schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "quota"),
	}, nil
}

// CheckAndIncrement checks both ceilings and increments both counters in
// one immediate transaction.
func (s *SQLiteStore) CheckAndIncrement(ctx context.Context, accountID string, monthlyCeiling, minuteCeiling int64) (*Result, error) {
	now := time.Now()
	mKey := monthlyKey(accountID, now)
	nKey := minuteKey(accountID, now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback()

	monthly, err := readCounter(ctx, tx, mKey)
	if err != nil {
		return nil, err
	}
	minute, err := readCounter(ctx, tx, nKey)
	if err != nil {
		return nil, err
	}

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

	if err := upsertCounter(ctx, tx, mKey, monthlyReset(now)); err != nil {
		return nil, err
	}
	if err := upsertCounter(ctx, tx, nKey, minuteReset(now).Add(time.Minute)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit quota transaction: %w", err)
	}

	result.Allowed = true
	result.MonthlyUsed = monthly + 1
	result.MinuteUsed = minute + 1
	return result, nil
}

// readCounter returns the live counter value for a key, treating expired
// rows as zero.
func readCounter(ctx context.Context, tx *sql.Tx, key string) (int64, error) {
	var count, expiresAt int64
	err := tx.QueryRowContext(ctx,
		"SELECT count, expires_at FROM quota_counters WHERE key = ?", key,
	).Scan(&count, &expiresAt)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	if expiresAt <= time.Now().Unix() {
		return 0, nil
	}
	return count, nil
}

// upsertCounter increments a counter, resetting any expired row to a
// fresh window before the increment applies.
func upsertCounter(ctx context.Context, tx *sql.Tx, key string, expires time.Time) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO quota_counters (key, count, expires_at) VALUES (?, 1, ?)
ON CONFLICT(key) DO UPDATE SET
	count = CASE WHEN expires_at <= unixepoch() THEN 1 ELSE count + 1 END,
	expires_at = excluded.expires_at`,
		key, expires.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to increment quota counter: %w", err)
	}
	return nil
}

// Ping reports database reachability.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Cleanup deletes expired counter rows.
func (s *SQLiteStore) Cleanup(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM quota_counters WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up quota counters: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Debug("pruned expired quota counters", "rows", n)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
