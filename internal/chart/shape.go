package chart

import (
	"fmt"
	"sort"
	"time"

	"github.com/vibecharting/chartsafe/internal/results"
)

// Shaping caps. Pie and bar fold overflow categories into a synthetic
// "Other" bucket: pie keeps the total row count within MaxPieCategories,
// bar keeps MaxBarCategories real categories plus the Other row.
// Scatter-family charts downsample rows; tables truncate.
const (
	MaxPieCategories     = 8
	MaxBarCategories     = 8
	MaxScatterPoints     = 3000
	MaxTableRows         = 1000
	DefaultHistogramBins = 20
	MaxHistogramBins     = 100

	otherBucket = "Other"
)

// NormalizeForChart applies chart-specific shaping to a result set: category
// folding, deterministic downsampling, ascending date sort for lines, and
// histogram bin clamping. Pure and deterministic for a fixed input.
func NormalizeForChart(rows []results.Row, spec Spec) ([]results.Row, Spec) {
	switch spec.Type {
	case Pie, Donut:
		return foldCategories(rows, spec, MaxPieCategories-1, MaxPieCategories), spec
	case Bar:
		return foldCategories(rows, spec, MaxBarCategories, MaxBarCategories), spec
	case Line:
		return sortByField(rows, spec.XField), spec
	case Scatter, Scatter3D:
		return downsample(rows, MaxScatterPoints), spec
	case Histogram:
		if spec.Bins <= 0 {
			spec.Bins = DefaultHistogramBins
		}

		if spec.Bins > MaxHistogramBins {
			spec.Bins = MaxHistogramBins
		}

		return rows, spec
	case Table:
		if len(rows) > MaxTableRows {
			return rows[:MaxTableRows], spec
		}

		return rows, spec
	default:
		return rows, spec
	}
}

// foldCategories keeps the top keep categories by value and sums the
// remainder into an "Other" bucket. Results with at most limit categories
// pass through untouched.
func foldCategories(rows []results.Row, spec Spec, keep, limit int) []results.Row {
	if spec.XField == "" || spec.YField == "" || len(rows) <= limit {
		return rows
	}

	sorted := make([]results.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := asFloat(sorted[i][spec.YField])
		b, _ := asFloat(sorted[j][spec.YField])

		return a > b
	})

	kept := sorted[:keep]

	var otherTotal float64
	for _, row := range sorted[keep:] {
		v, _ := asFloat(row[spec.YField])
		otherTotal += v
	}

	out := make([]results.Row, 0, keep+1)
	out = append(out, kept...)
	out = append(out, results.Row{spec.XField: otherBucket, spec.YField: otherTotal})

	return out
}

// downsample deterministically thins rows to at most max by taking evenly
// strided samples. Order is preserved.
func downsample(rows []results.Row, max int) []results.Row {
	if len(rows) <= max {
		return rows
	}

	out := make([]results.Row, 0, max)
	stride := float64(len(rows)) / float64(max)

	for i := 0; i < max; i++ {
		out = append(out, rows[int(float64(i)*stride)])
	}

	return out
}

// sortByField sorts rows ascending by the named field. Dates sort
// chronologically, numbers numerically, everything else lexically.
func sortByField(rows []results.Row, field string) []results.Row {
	if field == "" {
		return rows
	}

	out := make([]results.Row, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return lessValue(out[i][field], out[j][field])
	})

	return out
}

func lessValue(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Before(bt)
		}
	}

	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			return af < bf
		}
	}

	return fmt.Sprint(a) < fmt.Sprint(b)
}
