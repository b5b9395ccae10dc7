package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vibecharting/chartsafe/internal/schema"
)

var schemaJSON bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the discovered schema catalog",
	Long: `Discover the live database schema and print the catalog the validator
checks requests against. Denylisted PII columns are tagged but never included
in the description handed to extraction providers.`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "Print table schemas as JSON")

	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := activeConfig

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	denylist := schema.NewDenylist(cfg.PIIColumnList()...)
	refresher := schema.NewRefresher(store, denylist, cfg.RefreshIntervalDuration())

	if err := refresher.Refresh(ctx); err != nil {
		return err
	}

	cat := refresher.Catalog()

	if schemaJSON {
		tables := make([]*schema.TableSchema, 0)

		for _, name := range cat.TableNames() {
			if t, ok := cat.Lookup(name); ok {
				tables = append(tables, t)
			}
		}

		return printJSON(tables)
	}

	fmt.Printf("Catalog built at %s\n\n", cat.BuiltAt().Format("2006-01-02 15:04:05"))

	for _, name := range cat.TableNames() {
		table, ok := cat.Lookup(name)
		if !ok {
			continue
		}

		fmt.Println(name)
		printColumnClass("numeric", table.NumericColumns)
		printColumnClass("date", table.DateColumns)
		printColumnClass("categorical", table.CategoricalColumns)
		printColumnClass("pii (blocked)", table.PIIColumns)
		fmt.Println()
	}

	return nil
}

func printColumnClass(label string, cols []string) {
	if len(cols) == 0 {
		return
	}

	fmt.Printf("  %-14s %s\n", label+":", strings.Join(cols, ", "))
}
