package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/schema"
)

var (
	planTable string
	planType  string
	planX     string
	planY     string
	planZ     string
	planColor string
	planSize  string
	planAgg   string
	planLimit int
)

var planCmd = &cobra.Command{
	Use:   "plan [request-json]",
	Short: "Validate a structured chart request and print the SQL it would run",
	Long: `Dry-run the authorization pipeline: validate a structured chart request
against the live schema catalog and print the synthesized SQL without
executing it. The request is given either as a JSON document (with the same
field aliases accepted from extraction providers) or assembled from flags.
Rejections print the same structured detail clients receive.

Examples:
  chartsafe plan '{"table": "Account", "type": "bar", "x": "Industry", "y": "AnnualRevenue", "aggregation": "SUM"}'
  chartsafe plan --table Account --type bar -x Industry -y AnnualRevenue --agg SUM
  chartsafe plan --table Opportunity --type scatter -x Amount -y Probability`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planTable, "table", "", "Table to query (required)")
	planCmd.Flags().StringVar(&planType, "type", "bar", "Chart type")
	planCmd.Flags().StringVarP(&planX, "x-axis", "x", "", "X-axis column")
	planCmd.Flags().StringVarP(&planY, "y-axis", "y", "", "Y-axis column")
	planCmd.Flags().StringVarP(&planZ, "z-axis", "z", "", "Z-axis column")
	planCmd.Flags().StringVar(&planColor, "color", "", "Color grouping column")
	planCmd.Flags().StringVar(&planSize, "size", "", "Size column (bubble charts)")
	planCmd.Flags().StringVar(&planAgg, "agg", "", "Y aggregation: SUM, AVG, COUNT, MIN, MAX")
	planCmd.Flags().IntVar(&planLimit, "limit", 0, "Row limit (0 uses the configured cap)")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := activeConfig

	req, err := planRequest(args)
	if err != nil {
		return err
	}

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

	normalized, err := query.NewValidator().Validate(req, refresher.Catalog())
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			if jsonErr := printJSON(verr.Wire()); jsonErr != nil {
				return jsonErr
			}

			return fmt.Errorf("chart request rejected")
		}

		return err
	}

	limits := query.Limits{MaxRows: cfg.Limits.MaxRows, MaxGroups: cfg.Limits.MaxGroups}

	plan, err := query.NewBuilder(store.Dialect(), limits).Build(normalized)
	if err != nil {
		return err
	}

	fmt.Printf("Chart: %s\n", normalized.ChartType)
	fmt.Printf("SQL:   %s\n", plan.SQL)
	fmt.Printf("Cap:   %d rows\n", plan.EffectiveCap)

	return nil
}

// planRequest builds the untrusted request from a JSON argument or from
// flags. JSON goes through the same alias-resolving parser used for
// extraction output.
func planRequest(args []string) (*query.ChartRequest, error) {
	if len(args) == 1 {
		return query.ParseRequest([]byte(args[0]))
	}

	if planTable == "" {
		return nil, fmt.Errorf("either a JSON request or --table is required")
	}

	return &query.ChartRequest{
		TableName:  planTable,
		ChartType:  planType,
		XAxis:      planX,
		YAxis:      planY,
		ZAxis:      planZ,
		Color:      planColor,
		Size:       planSize,
		AggregateY: planAgg,
		Limit:      planLimit,
	}, nil
}
