// Package cmd wires the chartsafe CLI: natural-language chart requests,
// structured dry-run planning, schema inspection, and demo database seeding.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vibecharting/chartsafe/internal/config"
	"github.com/vibecharting/chartsafe/internal/logging"
)

var (
	flagLogLevel string
	flagDriver   string

	// activeConfig is populated by the persistent pre-run; commands read it
	// instead of loading configuration themselves.
	activeConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chartsafe",
	Short: "Authorize chart requests and synthesize safe SQL",
	Long: `chartsafe turns untrusted chart requests into validated, allowlist-checked
SQL. Requests can arrive as natural language (extracted by an LLM) or as
structured JSON; either way nothing reaches the database until every table,
column, chart type, and aggregation has been checked against the live schema
catalog and the PII denylist.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() error {
	ctx := context.Background()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	overrides := map[string]interface{}{}
	if cmd.Flags().Changed("log-level") {
		overrides["log-level"] = flagLogLevel
	}

	if cmd.Flags().Changed("driver") {
		overrides["driver"] = flagDriver
	}

	cfg, err := config.LoadConfigWithOverrides(overrides)
	if err != nil {
		return err
	}

	cfg.ExpandAllPaths()

	if err := logging.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	activeConfig = cfg

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "Database driver: sqlserver or duckdb")
}
