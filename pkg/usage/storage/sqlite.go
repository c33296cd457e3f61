package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the wait duration when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/usage.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
	id                TEXT PRIMARY KEY,
	account_id        TEXT NOT NULL,
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	tokens_estimated  INTEGER NOT NULL DEFAULT 0,
	latency_ms        INTEGER NOT NULL DEFAULT 0,
	estimated_cost    REAL NOT NULL DEFAULT 0,
	status_code       INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT,
	timestamp         TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_account_time ON usage_records(account_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage_records(timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider);
`

// SQLiteStorage implements usage.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) a SQLite usage store.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "usage.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("usage storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize enables WAL mode and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return usage.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return usage.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return usage.NewStorageError("sqlite", "create_schema", err)
	}

	return nil
}

// Store persists one usage record.
func (s *SQLiteStorage) Store(ctx context.Context, record *usage.Record) error {
	var errorVal interface{}
	if record.ErrorMessage != "" {
		errorVal = record.ErrorMessage
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (
			id, account_id, provider, model,
			prompt_tokens, completion_tokens, total_tokens, tokens_estimated,
			latency_ms, estimated_cost, status_code, error_message, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.AccountID, record.Provider, record.Model,
		record.PromptTokens, record.CompletionTokens, record.TotalTokens, record.TokensEstimated,
		record.LatencyMS, record.EstimatedCost, record.StatusCode, errorVal, record.Timestamp,
	)
	if err != nil {
		return usage.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns records matching the filter, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, q *usage.Query) ([]*usage.Record, error) {
	if q == nil {
		q = &usage.Query{}
	}

	var (
		conds []string
		args  []interface{}
	)
	if q.AccountID != "" {
		conds = append(conds, "account_id = ?")
		args = append(args, q.AccountID)
	}
	if q.Provider != "" {
		conds = append(conds, "provider = ?")
		args = append(args, q.Provider)
	}
	if !q.Since.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, q.Since)
	}
	if !q.Until.IsZero() {
		conds = append(conds, "timestamp < ?")
		args = append(args, q.Until)
	}

	query := `SELECT id, account_id, provider, model,
		prompt_tokens, completion_tokens, total_tokens, tokens_estimated,
		latency_ms, estimated_cost, status_code, error_message, timestamp
		FROM usage_records`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, usage.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var records []*usage.Record
	for rows.Next() {
		var (
			record   usage.Record
			errorMsg sql.NullString
		)
		err := rows.Scan(
			&record.ID, &record.AccountID, &record.Provider, &record.Model,
			&record.PromptTokens, &record.CompletionTokens, &record.TotalTokens, &record.TokensEstimated,
			&record.LatencyMS, &record.EstimatedCost, &record.StatusCode, &errorMsg, &record.Timestamp,
		)
		if err != nil {
			return nil, usage.NewStorageError("sqlite", "scan", err)
		}
		record.ErrorMessage = errorMsg.String
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, usage.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the total number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_records").Scan(&count); err != nil {
		return 0, usage.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteBefore removes records older than the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM usage_records WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, usage.NewStorageError("sqlite", "delete", err)
	}
	deleted, _ := res.RowsAffected()
	if deleted > 0 {
		s.logger.Info("pruned usage records", "deleted_count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
