package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/welldanyogia/webrana-ai-proxy-sub001/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the gateway configuration",
	Long: `Load the configuration file, apply defaults and environment
overrides, and report every validation failure.

Examples:
  # Validate the default config file
  webrana validate

  # Validate a specific file
  webrana validate --config /etc/webrana/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var vErr config.ValidationError
		if errors.As(err, &vErr) {
			fmt.Printf("✗ %s is invalid:\n", cfgFile)
			for _, fieldErr := range vErr.Errors {
				fmt.Printf("  - %s\n", fieldErr.Error())
			}
			return fmt.Errorf("%d validation error(s)", len(vErr.Errors))
		}
		return err
	}

	fmt.Printf("✓ %s is valid\n", cfgFile)
	fmt.Printf("  Providers: %d configured\n", len(cfg.Providers))
	fmt.Printf("  Quota backend: %s\n", cfg.Quota.Backend)
	fmt.Printf("  Usage backend: %s\n", cfg.Usage.Backend)
	return nil
}
