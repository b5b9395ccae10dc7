// Package query is the authorization core: it validates untrusted chart
// requests against the schema catalog and synthesizes parameter-safe SQL.
// No SQL text is ever constructed from a request that has not fully passed
// validation.
package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vibecharting/chartsafe/internal/chart"
)

// Aggregation is an allowlisted aggregate function applied to the y-axis.
type Aggregation string

const (
	AggNone  Aggregation = "NONE"
	AggSum   Aggregation = "SUM"
	AggAvg   Aggregation = "AVG"
	AggCount Aggregation = "COUNT"
	AggMin   Aggregation = "MIN"
	AggMax   Aggregation = "MAX"
)

// Aggregations is the fixed allowlist of aggregate functions.
var Aggregations = []Aggregation{AggNone, AggSum, AggAvg, AggCount, AggMin, AggMax}

// IsAllowedAggregation reports whether a belongs to the fixed allowlist.
func IsAllowedAggregation(a Aggregation) bool {
	for _, allowed := range Aggregations {
		if allowed == a {
			return true
		}
	}

	return false
}

// ChartRequest is an untrusted chart request as produced by an LLM or a UI
// selection. Nothing in it is believed until Validate accepts it.
type ChartRequest struct {
	TableName  string `json:"table_name"`
	ChartType  string `json:"chart_type"`
	XAxis      string `json:"x_axis,omitempty"`
	YAxis      string `json:"y_axis,omitempty"`
	ZAxis      string `json:"z_axis,omitempty"`
	Color      string `json:"color,omitempty"`
	Size       string `json:"size,omitempty"`
	AggregateY string `json:"aggregate_y,omitempty"`
	Title      string `json:"title,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// fieldAliases maps historical and LLM-favored key spellings onto the
// canonical request fields. Alias resolution happens exactly once, here at
// the boundary; the rest of the pipeline only sees canonical names.
var fieldAliases = map[string]string{
	"table":       "table_name",
	"x":           "x_axis",
	"x_field":     "x_axis",
	"labels":      "x_axis",
	"names":       "x_axis",
	"y":           "y_axis",
	"y_field":     "y_axis",
	"values":      "y_axis",
	"z":           "z_axis",
	"z_field":     "z_axis",
	"type":        "chart_type",
	"aggregate":   "aggregate_y",
	"aggregation": "aggregate_y",
	"max_rows":    "limit",
}

// ParseRequest decodes a raw JSON chart request, resolving field aliases
// before the typed decode. Unknown keys are ignored; a malformed document is
// an error.
func ParseRequest(data []byte) (*ChartRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("chart request is not a JSON object: %w", err)
	}

	resolved := make(map[string]json.RawMessage, len(raw))

	for key, val := range raw {
		canonical := strings.ToLower(strings.TrimSpace(key))
		if alias, ok := fieldAliases[canonical]; ok {
			canonical = alias
		}

		// First spelling wins so a canonical key is never clobbered by its
		// own alias.
		if _, exists := resolved[canonical]; !exists {
			resolved[canonical] = val
		}
	}

	merged, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize chart request: %w", err)
	}

	var req ChartRequest
	if err := json.Unmarshal(merged, &req); err != nil {
		return nil, fmt.Errorf("failed to decode chart request: %w", err)
	}

	return &req, nil
}

// NormalizedRequest is a chart request that passed every validation check.
// Only the builder consumes it; it is never constructed outside Validate.
type NormalizedRequest struct {
	Table     string
	ChartType chart.Type
	XAxis     string
	YAxis     string
	ZAxis     string
	Color     string
	Size      string
	Aggregate Aggregation // AggNone when no aggregation applies
	Limit     int         // requested limit, 0 when unset; clamped by the builder
}

// IsAggregated reports whether the request resolves to the GROUP BY shape.
func (n *NormalizedRequest) IsAggregated() bool {
	return n.Aggregate != "" && n.Aggregate != AggNone && n.XAxis != "" && n.YAxis != ""
}

// AggregateAlias returns the display alias for the aggregated y column,
// matching the alias the builder emits (e.g. "Sum of Revenue").
func (n *NormalizedRequest) AggregateAlias() string {
	if !n.IsAggregated() {
		return n.YAxis
	}

	switch n.Aggregate {
	case AggCount:
		return "Count of " + n.YAxis
	case AggSum:
		return "Sum of " + n.YAxis
	case AggAvg:
		return "Average of " + n.YAxis
	case AggMin:
		return "Min of " + n.YAxis
	case AggMax:
		return "Max of " + n.YAxis
	default:
		return n.YAxis
	}
}

// SelectedColumns returns the columns the plan will select, in emission
// order, duplicates removed.
func (n *NormalizedRequest) SelectedColumns() []string {
	var cols []string

	seen := map[string]struct{}{}
	add := func(c string) {
		if c == "" {
			return
		}

		if _, ok := seen[c]; ok {
			return
		}

		seen[c] = struct{}{}
		cols = append(cols, c)
	}

	add(n.XAxis)
	add(n.YAxis)
	add(n.Color)
	add(n.ZAxis)
	add(n.Size)

	return cols
}
