package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/accounts"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/cli"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/config"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/gateway/handlers"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/limits/quota"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/processing/costs"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/processing/tokens"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers/anthropic"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers/google"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers/openai"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/providers/qwen"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/routing"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/security/secrets"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/server"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage/recorder"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage/retention"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage/storage"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Webrana gateway",
	Long: `Start the Webrana gateway with the specified configuration.

The gateway listens on the configured address and serves the
OpenAI-compatible chat completion endpoint, enforcing per-account quota
and recording usage for every admitted request.

Examples:
  # Start with default config
  webrana run

  # Start with custom config
  webrana run --config /etc/webrana/config.yaml

  # Override listen address
  webrana run --listen 0.0.0.0:8080

  # Validate config without starting
  webrana run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger := setupLogging(&cfg.Telemetry.Logging)
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Webrana v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Secret resolution chain: files first, environment as fallback.
	resolver, closeSecrets, err := buildSecretResolver(&cfg.Secrets)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer closeSecrets()

	// Upstream provider adapters
	registry, err := buildProviderRegistry(ctx, cfg.Providers, resolver)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		for _, p := range registry {
			p.Close()
		}
	}()
	if len(registry) == 0 {
		return cli.NewConfigError("providers", "no providers enabled")
	}
	fmt.Printf("✓ Providers initialized (%d providers)\n", len(registry))

	// Quota store and limiter
	store, err := buildQuotaStore(&cfg.Quota, resolver, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	limiter := limits.NewLimiter(store, limits.NewMetrics(), logger)
	defer limiter.Close()
	if sqliteStore, ok := store.(*quota.SQLiteStore); ok {
		go quotaCleanupLoop(ctx, sqliteStore)
	}
	fmt.Printf("✓ Quota store initialized (%s)\n", cfg.Quota.Backend)

	// Usage storage, async recorder, retention
	usageStorage, err := buildUsageStorage(&cfg.Usage)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer usageStorage.Close()

	usageRecorder := recorder.NewRecorder(usageStorage, &recorder.Config{
		AsyncBuffer:  cfg.Usage.Recorder.AsyncBuffer,
		WriteTimeout: cfg.Usage.Recorder.WriteTimeout,
	})
	defer usageRecorder.Close()

	if cfg.Usage.Retention.Days > 0 {
		pruner := retention.NewPruner(usageStorage, &retention.Config{
			RetentionDays: cfg.Usage.Retention.Days,
			PruneSchedule: cfg.Usage.Retention.Schedule,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}
	fmt.Println("✓ Usage store initialized")

	// Account catalog
	catalog, err := accounts.NewCatalog(cfg.Accounts.CatalogPath, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if cfg.Accounts.Watch != nil && *cfg.Accounts.Watch {
		if err := catalog.Watch(); err != nil {
			slog.Warn("failed to watch account catalog", "error", err)
		} else {
			defer catalog.Close()
		}
	}
	fmt.Printf("✓ Account catalog loaded (%d accounts)\n", catalog.Len())

	// Handlers and server
	chatHandler := handlers.NewChatHandler(
		catalog,
		limiter,
		routing.NewRouter(registry, logger),
		usageRecorder,
		tokens.NewEstimator(),
		costs.NewCalculator(),
		logger,
	)
	healthHandler := handlers.NewHealthHandler(limiter, registry)

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, chatHandler, healthHandler)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled != nil && *cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// setupLogging builds the process logger from the telemetry config.
func setupLogging(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// buildSecretResolver assembles the secret chain from the config. The
// returned closer releases the file watcher, if one was started.
func buildSecretResolver(cfg *config.SecretsConfig) (*secrets.Resolver, func(), error) {
	var chain []secrets.Provider
	closer := func() {}

	if cfg.FilePath != "" {
		watch := cfg.WatchFiles != nil && *cfg.WatchFiles
		fileProvider, err := secrets.NewFileProvider(cfg.FilePath, watch)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize file secrets: %w", err)
		}
		chain = append(chain, fileProvider)
		closer = func() { fileProvider.Close() }
	}

	chain = append(chain, secrets.NewEnvProvider(cfg.EnvPrefix))
	return secrets.NewResolver(chain...), closer, nil
}

// buildProviderRegistry resolves each enabled provider's credential and
// constructs its adapter.
func buildProviderRegistry(
	ctx context.Context,
	configs map[string]config.ProviderConfig,
	resolver *secrets.Resolver,
) (map[string]providers.Provider, error) {
	registry := make(map[string]providers.Provider, len(configs))

	for name, cfg := range configs {
		if cfg.Enabled != nil && !*cfg.Enabled {
			slog.Info("provider disabled, skipping", "provider", name)
			continue
		}

		apiKey, err := resolver.GetSecret(ctx, cfg.APIKeyRef)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}

		providerConfig := providers.ProviderConfig{
			Name:                name,
			BaseURL:             cfg.BaseURL,
			APIKey:              apiKey,
			Timeout:             cfg.Timeout,
			MaxIdleConns:        cfg.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.IdleConnTimeout,
		}

		var provider providers.Provider
		switch name {
		case providers.ProviderOpenAI:
			provider, err = openai.NewProvider(providerConfig)
		case providers.ProviderAnthropic:
			provider, err = anthropic.NewProvider(providerConfig)
		case providers.ProviderGoogle:
			provider, err = google.NewProvider(providerConfig)
		case providers.ProviderQwen:
			provider, err = qwen.NewProvider(providerConfig)
		default:
			return nil, fmt.Errorf("no adapter for provider %q", name)
		}
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}

		registry[name] = provider
	}

	return registry, nil
}

// buildQuotaStore constructs the configured quota store backend.
func buildQuotaStore(cfg *config.QuotaConfig, resolver *secrets.Resolver, logger *slog.Logger) (quota.Store, error) {
	switch cfg.Backend {
	case "redis":
		password := ""
		if cfg.Redis.PasswordRef != "" {
			resolved, err := resolver.GetSecret(context.Background(), cfg.Redis.PasswordRef)
			if err != nil {
				return nil, fmt.Errorf("redis password: %w", err)
			}
			password = resolved
		}
		return quota.NewRedisStore(quota.RedisConfig{
			Addr:        cfg.Redis.Addr,
			Password:    password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
			OpTimeout:   cfg.Redis.OpTimeout,
		}, logger), nil

	case "sqlite":
		return quota.NewSQLiteStore(cfg.SQLite.Path, logger)

	case "memory":
		return quota.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unsupported quota backend: %s", cfg.Backend)
	}
}

// quotaCleanupLoop periodically deletes expired quota counter rows.
// The sqlite backend accrues one row per account per minute window;
// Redis expires its keys itself, memory drops them on read.
func quotaCleanupLoop(ctx context.Context, store *quota.SQLiteStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if _, err := store.Cleanup(cleanupCtx); err != nil {
				slog.Warn("quota counter cleanup failed", "error", err)
			}
			cancel()
		}
	}
}

// buildUsageStorage constructs the configured usage storage backend.
func buildUsageStorage(cfg *config.UsageConfig) (usage.Storage, error) {
	switch cfg.Backend {
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.SQLite.Path,
			MaxOpenConns: cfg.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.SQLite.MaxIdleConns,
			WALMode:      true,
			BusyTimeout:  cfg.SQLite.BusyTimeout,
		})
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported usage backend: %s", cfg.Backend)
	}
}
