package config

import "time"

// Config is the root configuration for the gateway. It covers the HTTP
// server, the upstream provider adapters, the account catalog, quota
// enforcement, usage recording, secret resolution, and telemetry.
type Config struct {
	// Server contains HTTP server settings: listen address, timeouts,
	// and graceful shutdown.
	Server ServerConfig `yaml:"server"`

	// Providers maps provider names (openai, anthropic, google, qwen)
	// to their adapter settings.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Accounts locates the account catalog snapshot.
	Accounts AccountsConfig `yaml:"accounts"`

	// Quota selects and configures the quota store backend.
	Quota QuotaConfig `yaml:"quota"`

	// Usage configures usage record storage and retention.
	Usage UsageConfig `yaml:"usage"`

	// Secrets configures upstream credential resolution.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	// ListenAddress is "host:port" the gateway listens on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout bounds reading the entire request, body included.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Streaming responses can
	// legitimately run long, so this default is generous.
	// Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive waits between requests.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown; in-flight requests past
	// it are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// ProviderConfig contains the settings for one upstream provider adapter.
type ProviderConfig struct {
	// Enabled controls whether the adapter is registered at startup.
	// Default: true when the provider appears in the file
	Enabled *bool `yaml:"enabled"`

	// BaseURL is the provider's API endpoint base URL.
	// Example: "https://api.openai.com/v1"
	BaseURL string `yaml:"base_url"`

	// APIKeyRef names the secret holding the provider credential. The
	// secret resolver chain (file, then environment) resolves it at
	// startup; the key itself never appears in this file.
	// Example: "openai-api-key"
	APIKeyRef string `yaml:"api_key_ref"`

	// Timeout bounds a non-streaming call and the gap between
	// successive stream chunks.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns is the adapter's connection pool size.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host pool size.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`

	// IdleConnTimeout is how long an idle connection stays pooled.
	// Default: 90s
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

// AccountsConfig locates the account catalog exported by the external
// account-management system.
type AccountsConfig struct {
	// CatalogPath is the path to the YAML catalog snapshot.
	// Default: "data/accounts.yaml"
	CatalogPath string `yaml:"catalog_path"`

	// Watch hot-reloads the catalog when the file changes.
	// Default: true
	Watch *bool `yaml:"watch"`
}

// QuotaConfig selects the quota store backend.
type QuotaConfig struct {
	// Backend is "redis", "sqlite", or "memory". Redis is the only
	// backend whose counters hold across a multi-instance fleet.
	// Default: "redis"
	Backend string `yaml:"backend"`

	// Redis configures the Redis backend.
	Redis RedisConfig `yaml:"redis"`

	// SQLite configures the single-instance SQLite backend.
	SQLite QuotaSQLiteConfig `yaml:"sqlite"`
}

// RedisConfig contains Redis connection settings for the quota store.
type RedisConfig struct {
	// Addr is the Redis "host:port".
	// Default: "127.0.0.1:6379"
	Addr string `yaml:"addr"`

	// PasswordRef names the secret holding the AUTH password; empty
	// means no AUTH.
	PasswordRef string `yaml:"password_ref"`

	// DB is the logical database number.
	// Default: 0
	DB int `yaml:"db"`

	// DialTimeout bounds connection establishment.
	// Default: 5s
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// OpTimeout bounds each quota operation.
	// Default: 2s
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// QuotaSQLiteConfig contains SQLite settings for the quota store.
type QuotaSQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/quota.db"
	Path string `yaml:"path"`
}

// UsageConfig configures usage record storage and retention.
type UsageConfig struct {
	// Backend is "sqlite" or "memory".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the SQLite storage backend.
	SQLite UsageSQLiteConfig `yaml:"sqlite"`

	// Recorder configures the async write path.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention configures record pruning.
	Retention RetentionConfig `yaml:"retention"`
}

// UsageSQLiteConfig contains SQLite settings for usage storage.
type UsageSQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is how long a locked write waits before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig configures the async usage recorder.
type RecorderConfig struct {
	// AsyncBuffer is the size of the write channel buffer.
	// Default: 1000
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds each storage write.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig configures usage record pruning.
type RetentionConfig struct {
	// Days is how long records are kept; negative disables pruning.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is the cron expression for the prune job.
	// Default: "0 3 * * *" (daily at 3 AM)
	Schedule string `yaml:"schedule"`
}

// SecretsConfig configures the secret resolution chain. File-based
// secrets take precedence over environment variables.
type SecretsConfig struct {
	// FilePath is the directory holding one file per secret; empty
	// disables the file provider.
	FilePath string `yaml:"file_path"`

	// WatchFiles invalidates cached file secrets when they change on
	// disk, so rotated credentials take effect without a restart.
	// Default: true
	WatchFiles *bool `yaml:"watch_files"`

	// EnvPrefix namespaces secret environment variables.
	// Default: "WEBRANA_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`
}

// TelemetryConfig configures logging and metrics.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled controls whether the endpoint is served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
