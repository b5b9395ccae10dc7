package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibecharting/chartsafe/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and populate the local demo database",
	Long: `Create the DuckDB demo database with the baseline CRM tables and a small
deterministic dataset. Safe to re-run: tables are dropped and recreated.
Only the duckdb driver supports seeding.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := activeConfig

	if cfg.Database.Driver != "duckdb" {
		return fmt.Errorf("seed requires the duckdb driver, got %q", cfg.Database.Driver)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store, err := storage.NewDuckDBStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Seed(ctx); err != nil {
		return err
	}

	fmt.Printf("Demo database seeded at %s\n", cfg.Database.DuckDBPath)

	return nil
}
