package query

import (
	"fmt"
	"strings"

	"github.com/vibecharting/chartsafe/internal/chart"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// Validator accepts or rejects chart requests against a catalog snapshot.
// Checks run in a fixed order and the first failure wins; no SQL is built on
// any failure path.
type Validator struct{}

// NewValidator creates a validator. It is stateless; the catalog snapshot is
// passed per call so concurrent requests each hold a consistent view.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every check against the request. On success it returns the
// normalized request the builder consumes; on failure a *ValidationError.
func (v *Validator) Validate(req *ChartRequest, cat *schema.Catalog) (*NormalizedRequest, error) {
	// Check 1: chart type must normalize into the canonical allowlist.
	chartType := chart.NormalizeType(req.ChartType)
	if !chart.IsCanonical(chartType) {
		return nil, newValidationError(KindUnknownChartType,
			fmt.Sprintf("Invalid chart_type %q. Allowed types: %s",
				req.ChartType, strings.Join(chart.CanonicalNames(), ", ")),
			chart.CanonicalNames())
	}

	// Check 2: table must exist in the snapshot (schema prefix stripped).
	tableName := schema.StripSchemaPrefix(strings.TrimSpace(req.TableName))
	if tableName == "" {
		return nil, newValidationError(KindUnknownTable,
			"table_name is required", cat.TableNames())
	}

	table, ok := cat.Lookup(tableName)
	if !ok {
		return nil, newValidationError(KindUnknownTable,
			fmt.Sprintf("Table %q not found in database. Available tables: %s",
				tableName, strings.Join(cat.TableNames(), ", ")),
			cat.TableNames())
	}

	// Check 3: every referenced column must exist on the table.
	referenced := []struct {
		role string
		name string
	}{
		{"x_axis", req.XAxis},
		{"y_axis", req.YAxis},
		{"z_axis", req.ZAxis},
		{"color", req.Color},
		{"size", req.Size},
	}

	for _, ref := range referenced {
		if ref.name == "" {
			continue
		}

		if !table.HasColumn(ref.name) {
			return nil, newValidationError(KindUnknownColumn,
				fmt.Sprintf("Invalid column %q for %s. Must be one of: %s",
					ref.name, ref.role, strings.Join(table.AllColumns, ", ")),
				table.AllColumns)
		}
	}

	// Check 4: no referenced column may be denylisted, regardless of role.
	// Independent of check 3: a denylisted name is rejected as PII even when
	// it is a real column.
	denylist := cat.Denylist()
	for _, ref := range referenced {
		if ref.name != "" && denylist.Contains(ref.name) {
			return nil, newValidationError(KindPiiViolation,
				fmt.Sprintf("Column %q contains PII and cannot be selected for privacy protection.",
					ref.name),
				selectableColumns(table, denylist))
		}
	}

	// Check 5: aggregation allowlist, and a numeric target for everything
	// except COUNT.
	agg := AggNone
	if raw := strings.TrimSpace(req.AggregateY); raw != "" {
		agg = Aggregation(strings.ToUpper(raw))
		if !IsAllowedAggregation(agg) {
			return nil, newValidationError(KindUnknownAggregation,
				fmt.Sprintf("Invalid aggregate_y %q. Allowed: AVG, COUNT, MAX, MIN, SUM", raw),
				[]string{"SUM", "AVG", "COUNT", "MIN", "MAX"})
		}

		if agg != AggNone && agg != AggCount && req.YAxis != "" && !table.IsNumeric(req.YAxis) {
			return nil, newValidationError(KindNonNumericAggTarget,
				fmt.Sprintf("Cannot apply %s to non-numerical column %q. Numerical columns: %s",
					agg, req.YAxis, strings.Join(table.NumericColumns, ", ")),
				table.NumericColumns)
		}
	}

	// Check 6: chart-type-specific field cardinality.
	if verr := v.checkRequirements(chartType, req, table); verr != nil {
		return nil, verr
	}

	if req.Limit < 0 {
		return nil, newValidationError(KindMissingRequiredField,
			"limit must be at least 1", nil)
	}

	nr := &NormalizedRequest{
		Table:     tableName,
		ChartType: chartType,
		XAxis:     req.XAxis,
		YAxis:     req.YAxis,
		ZAxis:     req.ZAxis,
		Color:     req.Color,
		Size:      req.Size,
		Aggregate: agg,
		Limit:     req.Limit,
	}

	// Histograms select only the binned column.
	if chartType == chart.Histogram {
		nr.YAxis = ""
		nr.Aggregate = AggNone
	}

	return nr, nil
}

// checkRequirements enforces the per-chart-type field shape: which roles are
// required and which must resolve to numeric columns.
func (v *Validator) checkRequirements(
	chartType chart.Type,
	req *ChartRequest,
	table *schema.TableSchema,
) *ValidationError {
	reqs := chart.RequirementsFor(chartType)

	missing := func(role string) *ValidationError {
		return newValidationError(KindMissingRequiredField,
			fmt.Sprintf("%s is required for chart_type %q. Numerical columns: %s; categorical columns: %s",
				role, chartType,
				strings.Join(table.NumericColumns, ", "),
				strings.Join(table.CategoricalColumns, ", ")),
			table.NumericColumns)
	}

	nonNumeric := func(role, col string) *ValidationError {
		return newValidationError(KindMissingRequiredField,
			fmt.Sprintf("%s %q must be numeric for chart_type %q. Numerical columns: %s",
				role, col, chartType, strings.Join(table.NumericColumns, ", ")),
			table.NumericColumns)
	}

	if reqs.NeedsX && req.XAxis == "" {
		return missing("x_axis")
	}

	if reqs.NeedsY && req.YAxis == "" {
		return missing("y_axis")
	}

	if reqs.NeedsZ && req.ZAxis == "" {
		return missing("z_axis")
	}

	if reqs.NeedsSize {
		if req.Size == "" {
			return missing("size")
		}

		if !table.IsNumeric(req.Size) {
			return nonNumeric("size", req.Size)
		}
	}

	// The first NumericAxes of x, y, z must be numeric columns.
	axes := []struct {
		role string
		name string
	}{
		{"x_axis", req.XAxis},
		{"y_axis", req.YAxis},
		{"z_axis", req.ZAxis},
	}
	for i := 0; i < reqs.NumericAxes && i < len(axes); i++ {
		if axes[i].name != "" && !table.IsNumeric(axes[i].name) {
			return nonNumeric(axes[i].role, axes[i].name)
		}
	}

	if reqs.NumericY && req.YAxis != "" && !table.IsNumeric(req.YAxis) {
		return nonNumeric("y_axis", req.YAxis)
	}

	if reqs.HeatmapShape {
		// Heatmap dimensions are categorical or date; the z metric is numeric.
		for _, dim := range []struct {
			role string
			name string
		}{{"x_axis", req.XAxis}, {"y_axis", req.YAxis}} {
			if table.IsNumeric(dim.name) {
				return newValidationError(KindMissingRequiredField,
					fmt.Sprintf("%s %q must be a categorical or date dimension for a heatmap. Categorical columns: %s",
						dim.role, dim.name, strings.Join(table.CategoricalColumns, ", ")),
					table.CategoricalColumns)
			}
		}

		if !table.IsNumeric(req.ZAxis) {
			return nonNumeric("z_axis", req.ZAxis)
		}
	}

	return nil
}

func selectableColumns(table *schema.TableSchema, denylist schema.Denylist) []string {
	out := make([]string, 0, len(table.AllColumns))

	for _, c := range table.AllColumns {
		if !denylist.Contains(c) {
			out = append(out, c)
		}
	}

	return out
}
