package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/vibecharting/chartsafe/internal/formatter"
	"github.com/vibecharting/chartsafe/internal/service"
)

var (
	askType     string
	askLanguage string
	askJSON     bool
	askNoCache  bool
	askMaxShow  int
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Turn a natural-language question into a validated chart",
	Long: `Extract a chart request from a natural-language message, validate it
against the schema catalog, run the synthesized SQL, and print the resulting
chart specification and data.

Examples:
  chartsafe ask "total revenue by industry"
  chartsafe ask --type pie "share of opportunities by stage"
  chartsafe ask --json "employees per region"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askType, "type", "t", "", "Force a chart type instead of the extracted one")
	askCmd.Flags().StringVar(&askLanguage, "language", "", "Language hint for the extraction provider")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the full response as JSON")
	askCmd.Flags().BoolVar(&askNoCache, "no-cache", false, "Bypass the response cache")
	askCmd.Flags().IntVar(&askMaxShow, "rows", 20, "Maximum data rows to print")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := activeConfig

	message := strings.TrimSpace(args[0])
	if message == "" {
		return fmt.Errorf("message must not be empty")
	}

	if askNoCache {
		cfg.Cache.Enabled = false
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, refresher := newService(ctx, cfg, store)
	defer refresher.Stop()

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	spin.Suffix = " validating and querying..."
	spin.Start()

	resp, rejection, err := svc.HandleChart(ctx, service.Request{
		Message:    message,
		ForcedType: askType,
		Language:   askLanguage,
	})

	spin.Stop()

	if err != nil {
		return err
	}

	out := formatter.NewFormatter(askMaxShow)

	if rejection != nil {
		fmt.Println(out.Rejection(rejection))
		return fmt.Errorf("chart request rejected")
	}

	if askJSON {
		return printJSON(resp)
	}

	fmt.Println(out.Response(resp))

	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))

	return nil
}
