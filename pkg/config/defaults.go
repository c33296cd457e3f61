package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 5 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Provider defaults
	DefaultProviderTimeout             = 60 * time.Second
	DefaultProviderMaxIdleConns        = 100
	DefaultProviderMaxIdleConnsPerHost = 10
	DefaultProviderIdleConnTimeout     = 90 * time.Second

	// Accounts defaults
	DefaultCatalogPath = "data/accounts.yaml"

	// Quota defaults
	DefaultQuotaBackend     = "redis"
	DefaultRedisAddr        = "127.0.0.1:6379"
	DefaultRedisDialTimeout = 5 * time.Second
	DefaultRedisOpTimeout   = 2 * time.Second
	DefaultQuotaSQLitePath  = "data/quota.db"

	// Usage defaults
	DefaultUsageBackend             = "sqlite"
	DefaultUsageSQLitePath          = "data/usage.db"
	DefaultUsageSQLiteMaxOpenConns  = 10
	DefaultUsageSQLiteMaxIdleConns  = 5
	DefaultUsageSQLiteBusyTimeout   = 5 * time.Second
	DefaultRecorderAsyncBuffer      = 1000
	DefaultRecorderWriteTimeout     = 5 * time.Second
	DefaultRetentionDays            = 90
	DefaultRetentionSchedule        = "0 3 * * *"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "WEBRANA_SECRET_"

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"
)

// boolPtr returns a pointer to b, for optional boolean defaults.
func boolPtr(b bool) *bool {
	return &b
}

// ApplyDefaults fills zero-valued fields with their defaults. It is
// idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Providers
	for name, provider := range cfg.Providers {
		if provider.Enabled == nil {
			provider.Enabled = boolPtr(true)
		}
		if provider.Timeout == 0 {
			provider.Timeout = DefaultProviderTimeout
		}
		if provider.MaxIdleConns == 0 {
			provider.MaxIdleConns = DefaultProviderMaxIdleConns
		}
		if provider.MaxIdleConnsPerHost == 0 {
			provider.MaxIdleConnsPerHost = DefaultProviderMaxIdleConnsPerHost
		}
		if provider.IdleConnTimeout == 0 {
			provider.IdleConnTimeout = DefaultProviderIdleConnTimeout
		}
		cfg.Providers[name] = provider
	}

	// Accounts
	if cfg.Accounts.CatalogPath == "" {
		cfg.Accounts.CatalogPath = DefaultCatalogPath
	}
	if cfg.Accounts.Watch == nil {
		cfg.Accounts.Watch = boolPtr(true)
	}

	// Quota
	if cfg.Quota.Backend == "" {
		cfg.Quota.Backend = DefaultQuotaBackend
	}
	if cfg.Quota.Redis.Addr == "" {
		cfg.Quota.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Quota.Redis.DialTimeout == 0 {
		cfg.Quota.Redis.DialTimeout = DefaultRedisDialTimeout
	}
	if cfg.Quota.Redis.OpTimeout == 0 {
		cfg.Quota.Redis.OpTimeout = DefaultRedisOpTimeout
	}
	if cfg.Quota.SQLite.Path == "" {
		cfg.Quota.SQLite.Path = DefaultQuotaSQLitePath
	}

	// Usage
	if cfg.Usage.Backend == "" {
		cfg.Usage.Backend = DefaultUsageBackend
	}
	if cfg.Usage.SQLite.Path == "" {
		cfg.Usage.SQLite.Path = DefaultUsageSQLitePath
	}
	if cfg.Usage.SQLite.MaxOpenConns == 0 {
		cfg.Usage.SQLite.MaxOpenConns = DefaultUsageSQLiteMaxOpenConns
	}
	if cfg.Usage.SQLite.MaxIdleConns == 0 {
		cfg.Usage.SQLite.MaxIdleConns = DefaultUsageSQLiteMaxIdleConns
	}
	if cfg.Usage.SQLite.BusyTimeout == 0 {
		cfg.Usage.SQLite.BusyTimeout = DefaultUsageSQLiteBusyTimeout
	}
	if cfg.Usage.Recorder.AsyncBuffer == 0 {
		cfg.Usage.Recorder.AsyncBuffer = DefaultRecorderAsyncBuffer
	}
	if cfg.Usage.Recorder.WriteTimeout == 0 {
		cfg.Usage.Recorder.WriteTimeout = DefaultRecorderWriteTimeout
	}
	if cfg.Usage.Retention.Days == 0 {
		cfg.Usage.Retention.Days = DefaultRetentionDays
	}
	if cfg.Usage.Retention.Schedule == "" {
		cfg.Usage.Retention.Schedule = DefaultRetentionSchedule
	}

	// Secrets
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.WatchFiles == nil {
		cfg.Secrets.WatchFiles = boolPtr(true)
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		cfg.Telemetry.Metrics.Enabled = boolPtr(true)
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
