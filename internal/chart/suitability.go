package chart

import (
	"fmt"

	"github.com/vibecharting/chartsafe/internal/results"
)

const (
	pieReadabilityLimit = 10
	stackableColorLimit = 5
)

// Suitability reports whether the requested chart type fits the fetched
// data. It never blocks a chart: at worst it downgrades to a type the data
// can support and explains why.
type Suitability struct {
	Recommended   Type
	ReasonNotBest string
	Warnings      []string
}

// AssessSuitability inspects the result set against the requested chart type
// and the roles the request assigned. Missing required columns downgrade to
// the nearest supportable type; readability concerns only warn.
func AssessSuitability(requested Type, rows []results.Row, x, y, z, size, color string) Suitability {
	s := Suitability{Recommended: requested}

	switch requested {
	case Scatter3D:
		if z == "" || !hasColumn(rows, z) {
			s.Recommended = Scatter
			s.ReasonNotBest = "3D scatter plot requires a Z-axis column. Using 2D scatter plot instead."
			s.Warnings = append(s.Warnings, "Missing Z-axis for 3D chart")
		}
	case Bubble:
		if size == "" || !hasColumn(rows, size) {
			s.Recommended = Scatter
			s.ReasonNotBest = "Bubble chart requires a size column. Using scatter plot instead."
			s.Warnings = append(s.Warnings, "Missing size column for bubble chart")
		}
	case Pie, Donut:
		if x != "" && hasColumn(rows, x) {
			if n := distinctCount(rows, x); n > pieReadabilityLimit {
				s.Warnings = append(s.Warnings, fmt.Sprintf(
					"Pie chart has %d categories, which may be hard to read. Consider using a bar chart.", n))
			}
		}
	case Bar:
		if color != "" && hasColumn(rows, color) {
			if distinctCount(rows, color) <= stackableColorLimit {
				s.Warnings = append(s.Warnings,
					"Consider using a stacked bar chart to show breakdown by color.")
			}
		}
	}

	return s
}

func hasColumn(rows []results.Row, col string) bool {
	for _, row := range rows {
		if _, ok := row[col]; ok {
			return true
		}
	}

	return false
}
