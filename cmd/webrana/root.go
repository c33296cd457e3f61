package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "webrana",
	Short: "Webrana - AI proxy gateway for multi-provider LLM traffic",
	Long: `Webrana is an AI proxy gateway that fronts multiple LLM providers
behind one OpenAI-compatible endpoint.

It provides:
  - Model-prefix routing across OpenAI, Anthropic, Google, and Qwen
  - Bidirectional schema translation, streaming included
  - Per-account monthly and per-minute quota enforcement
  - Token usage and cost recording for billing`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
