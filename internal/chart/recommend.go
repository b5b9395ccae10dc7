package chart

import (
	"sort"
	"strings"
	"time"

	"github.com/vibecharting/chartsafe/internal/results"
)

// Shape buckets the result columns by observed value class, preserving the
// column order the query selected them in.
type Shape struct {
	Numeric     []string
	Date        []string
	Categorical []string
}

// DetectShape classifies each column by inspecting the first non-nil value in
// the result set. Columns with no values at all are treated as categorical.
func DetectShape(rows []results.Row, columns []string) Shape {
	if len(columns) == 0 {
		columns = collectColumns(rows)
	}

	var shape Shape

	for _, col := range columns {
		switch classifyValue(firstValue(rows, col)) {
		case ClassNumericValue:
			shape.Numeric = append(shape.Numeric, col)
		case ClassDateValue:
			shape.Date = append(shape.Date, col)
		default:
			shape.Categorical = append(shape.Categorical, col)
		}
	}

	return shape
}

// Recommend infers a canonical chart type from the column-type shape of the
// result set plus a natural-language hint. Used only when the caller did not
// force a chart type. Deterministic for a fixed input.
func Recommend(rows []results.Row, columns []string, hint string) Spec {
	shape := DetectShape(rows, columns)
	hint = strings.ToLower(hint)

	switch {
	case len(shape.Numeric) >= 3 && strings.Contains(hint, "3d"):
		return Spec{
			Type:   Scatter3D,
			XField: shape.Numeric[0],
			YField: shape.Numeric[1],
			ZField: shape.Numeric[2],
			Reason: "three numeric columns with a 3d hint",
		}
	case len(shape.Numeric) == 1 && len(shape.Date) == 0 && len(shape.Categorical) == 0 &&
		(strings.Contains(hint, "histogram") || strings.Contains(hint, "distribution")):
		return Spec{
			Type:   Histogram,
			XField: shape.Numeric[0],
			Bins:   DefaultHistogramBins,
			Reason: "single numeric column with a distribution hint",
		}
	case len(shape.Numeric) >= 2:
		return Spec{
			Type:   Scatter,
			XField: shape.Numeric[0],
			YField: shape.Numeric[1],
			Reason: "two or more numeric columns",
		}
	case len(shape.Date) >= 1 && len(shape.Numeric) == 1 &&
		(strings.Contains(hint, "trend") || strings.Contains(hint, "over time")):
		return Spec{
			Type:   Line,
			XField: shape.Date[0],
			YField: shape.Numeric[0],
			Reason: "date dimension with a trend hint, sorted ascending",
		}
	case len(shape.Categorical) >= 1 && len(shape.Numeric) == 1:
		x, y := shape.Categorical[0], shape.Numeric[0]
		if distinctCount(rows, x) <= MaxPieCategories && allNonNegative(rows, y) &&
			(strings.Contains(hint, "share") || strings.Contains(hint, "proportion") ||
				strings.Contains(hint, "percentage")) {
			return Spec{
				Type:   Pie,
				XField: x,
				YField: y,
				Reason: "few non-negative categories with a share hint",
			}
		}

		return Spec{
			Type:   Bar,
			XField: x,
			YField: y,
			Reason: "one categorical dimension and one numeric measure",
		}
	case len(shape.Date) >= 1 && len(shape.Numeric) == 1:
		// Date without a trend hint still reads as a dimension.
		return Spec{
			Type:   Bar,
			XField: shape.Date[0],
			YField: shape.Numeric[0],
			Reason: "date dimension and one numeric measure",
		}
	default:
		return Spec{Type: Table, Reason: "no recognizable chart shape"}
	}
}

// valueClass is the observed class of a single result value.
type valueClass int

const (
	ClassCategoricalValue valueClass = iota
	ClassNumericValue
	ClassDateValue
)

func classifyValue(v any) valueClass {
	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return ClassNumericValue
	case time.Time:
		return ClassDateValue
	case string:
		if looksLikeDate(val) {
			return ClassDateValue
		}

		return ClassCategoricalValue
	default:
		return ClassCategoricalValue
	}
}

func looksLikeDate(s string) bool {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

func firstValue(rows []results.Row, col string) any {
	for _, row := range rows {
		if v, ok := row[col]; ok && v != nil {
			return v
		}
	}

	return nil
}

func collectColumns(rows []results.Row) []string {
	seen := map[string]struct{}{}

	var cols []string

	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}

	sort.Strings(cols)

	return cols
}

func distinctCount(rows []results.Row, col string) int {
	seen := map[any]struct{}{}
	for _, row := range rows {
		seen[row[col]] = struct{}{}
	}

	return len(seen)
}

func allNonNegative(rows []results.Row, col string) bool {
	for _, row := range rows {
		if n, ok := asFloat(row[col]); ok && n < 0 {
			return false
		}
	}

	return true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
