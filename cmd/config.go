package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display the active configuration",
	Long:  `Show the current active configuration including all settings from file, environment variables, and command-line flags.`,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := activeConfig

	fmt.Println("====================")
	fmt.Println("Active Configuration:")

	fmt.Println("\nDatabase:")
	fmt.Printf("  Driver: %s\n", cfg.Database.Driver)

	if cfg.Database.Driver == "duckdb" {
		fmt.Printf("  DuckDB Path: %s\n", cfg.Database.DuckDBPath)
	} else {
		fmt.Printf("  Connection String Set: %t\n", cfg.Database.ConnString != "")
	}

	fmt.Printf("  Max Connections: %d\n", cfg.Database.MaxConnections)
	fmt.Printf("  Query Timeout: %s\n", cfg.Database.QueryTimeout)

	fmt.Println("\nSchema:")
	fmt.Printf("  Refresh Interval: %s\n", cfg.Schema.RefreshInterval)
	fmt.Printf("  PII Columns: %s\n", strings.Join(cfg.PIIColumnList(), ", "))

	fmt.Println("\nLLM:")
	fmt.Printf("  Model: %s\n", cfg.LLM.Model)
	fmt.Printf("  API Key Set: %t\n", cfg.LLM.APIKey != "")
	fmt.Printf("  Max Tokens: %d\n", cfg.LLM.MaxTokens)
	fmt.Printf("  Temperature: %.1f\n", cfg.LLM.Temperature)
	fmt.Printf("  Timeout: %s\n", cfg.LLM.Timeout)
	fmt.Printf("  Max Retries: %d\n", cfg.LLM.MaxRetries)

	fmt.Println("\nCache:")
	fmt.Printf("  Enabled: %t\n", cfg.Cache.Enabled)
	fmt.Printf("  TTL: %s\n", cfg.Cache.TTL)
	fmt.Printf("  Max Entries: %d\n", cfg.Cache.MaxEntries)

	fmt.Println("\nLimits:")
	fmt.Printf("  Max Rows: %d\n", cfg.Limits.MaxRows)
	fmt.Printf("  Max Groups: %d\n", cfg.Limits.MaxGroups)

	fmt.Println("\nLogging:")
	fmt.Printf("  Level: %s\n", cfg.Logging.Level)
	fmt.Printf("  Format: %s\n", cfg.Logging.Format)
	fmt.Printf("  Output: %s\n", cfg.Logging.Output)

	if cfg.Logging.Output == "file" {
		fmt.Printf("  File: %s\n", cfg.Logging.File)
	}

	return nil
}
