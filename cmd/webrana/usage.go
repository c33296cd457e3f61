package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/cli"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/config"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage"
	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/usage/storage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect recorded usage",
	Long:  `Query and summarize the usage records written by the gateway.`,
}

var usageQueryFlags struct {
	accountID string
	provider  string
	since     string
	until     string
	limit     int
	format    string
}

var usageQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query usage records",
	Long: `Query usage records from the configured storage backend.

Examples:
  # Latest 50 records for one account
  webrana usage query --account acct-42 --limit 50

  # Records for one provider in a time window
  webrana usage query --provider openai \
    --since 2026-08-01T00:00:00Z --until 2026-08-25T00:00:00Z

  # Machine-readable output
  webrana usage query --account acct-42 --format json`,
	RunE: queryUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usageQueryCmd)

	usageQueryCmd.Flags().StringVar(&usageQueryFlags.accountID, "account", "", "filter by account ID")
	usageQueryCmd.Flags().StringVar(&usageQueryFlags.provider, "provider", "", "filter by provider name")
	usageQueryCmd.Flags().StringVar(&usageQueryFlags.since, "since", "", "include records at or after this RFC3339 time")
	usageQueryCmd.Flags().StringVar(&usageQueryFlags.until, "until", "", "exclude records at or after this RFC3339 time")
	usageQueryCmd.Flags().IntVar(&usageQueryFlags.limit, "limit", 100, "maximum records to return (0 for no cap)")
	usageQueryCmd.Flags().StringVar(&usageQueryFlags.format, "format", "text", "output format: text, json")
}

func queryUsage(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if cfg.Usage.Backend != "sqlite" {
		return cli.NewConfigError("usage.backend",
			fmt.Sprintf("usage query requires the sqlite backend, configured backend is %q", cfg.Usage.Backend))
	}

	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Usage.SQLite.Path,
		MaxOpenConns: cfg.Usage.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Usage.SQLite.MaxIdleConns,
		WALMode:      true,
		BusyTimeout:  cfg.Usage.SQLite.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("usage query", err)
	}
	defer store.Close()

	query := &usage.Query{
		AccountID: usageQueryFlags.accountID,
		Provider:  usageQueryFlags.provider,
		Limit:     usageQueryFlags.limit,
	}
	if usageQueryFlags.since != "" {
		since, err := time.Parse(time.RFC3339, usageQueryFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since time: %w", err)
		}
		query.Since = since
	}
	if usageQueryFlags.until != "" {
		until, err := time.Parse(time.RFC3339, usageQueryFlags.until)
		if err != nil {
			return fmt.Errorf("invalid --until time: %w", err)
		}
		query.Until = until
	}

	records, err := store.Query(context.Background(), query)
	if err != nil {
		return cli.NewCommandError("usage query", err)
	}

	if usageQueryFlags.format == "json" {
		formatter := cli.NewFormatter(cli.FormatJSON)
		return formatter.FormatTo(os.Stdout, records)
	}

	if len(records) == 0 {
		fmt.Println("No usage records found.")
		return nil
	}

	printUsageTable(records)
	return nil
}

// printUsageTable renders records as a fixed-width table with a totals
// line.
func printUsageTable(records []*usage.Record) {
	fmt.Printf("%-26s %-12s %-10s %-24s %8s %10s %6s\n",
		"TIMESTAMP", "ACCOUNT", "PROVIDER", "MODEL", "TOKENS", "COST", "STATUS")

	var totalTokens int
	var totalCost float64
	for _, record := range records {
		tokens := fmt.Sprintf("%d", record.TotalTokens)
		if record.TokensEstimated {
			tokens += "*"
		}
		fmt.Printf("%-26s %-12s %-10s %-24s %8s %10.6f %6d\n",
			record.Timestamp.Format(time.RFC3339),
			record.AccountID,
			record.Provider,
			record.Model,
			tokens,
			record.EstimatedCost,
			record.StatusCode,
		)
		totalTokens += record.TotalTokens
		totalCost += record.EstimatedCost
	}

	fmt.Println()
	fmt.Printf("Records: %d   Tokens: %d   Cost: $%.6f   (* = estimated)\n",
		len(records), totalTokens, totalCost)
}
