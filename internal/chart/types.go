// Package chart defines the canonical chart-type vocabulary, the alias
// normalizer, the shape-based recommender, and post-query shaping.
package chart

// Type is a canonical chart type. Every alias spelling is mapped onto this
// closed vocabulary before validation or rendering decisions.
type Type string

const (
	Bar       Type = "bar_chart"
	Line      Type = "line_chart"
	Pie       Type = "pie_chart"
	Donut     Type = "donut_chart"
	Scatter   Type = "scatter_plot"
	Histogram Type = "histogram"
	Scatter3D Type = "3d_scatter_plot"
	Heatmap   Type = "heatmap"
	Bubble    Type = "bubble_chart"
	Table     Type = "table"
	Box       Type = "box_plot"
	Area      Type = "area_chart"
)

// Canonical is the fixed allowlist of chart types, in display order.
var Canonical = []Type{
	Bar, Line, Pie, Donut, Scatter, Histogram,
	Scatter3D, Heatmap, Bubble, Table, Box, Area,
}

// IsCanonical reports whether t belongs to the fixed allowlist.
func IsCanonical(t Type) bool {
	for _, c := range Canonical {
		if c == t {
			return true
		}
	}

	return false
}

// CanonicalNames returns the allowlist as sorted-stable strings for error
// messages.
func CanonicalNames() []string {
	names := make([]string, len(Canonical))
	for i, t := range Canonical {
		names[i] = string(t)
	}

	return names
}

// Spec is the renderer-facing description of a chart: which canonical type to
// draw and which result fields feed each role.
type Spec struct {
	Type     Type     `json:"chart_type"`
	XField   string   `json:"x_field,omitempty"`
	YField   string   `json:"y_field,omitempty"`
	ZField   string   `json:"z_field,omitempty"`
	Bins     int      `json:"bins,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Requirements describes the field cardinality a chart type demands of a
// validated request.
type Requirements struct {
	NumericAxes  int  // x/y/z axes that must be numeric, in order
	NeedsX       bool // x_axis required
	NeedsY       bool // y_axis required
	NeedsZ       bool // z_axis required
	NeedsSize    bool // numeric size field required (bubble)
	NumericY     bool // y_axis must be numeric (pie/donut values)
	HeatmapShape bool // two categorical/date dimensions plus one numeric metric
}

// RequirementsFor returns the per-type field requirements checked by the
// validator after identifier resolution.
func RequirementsFor(t Type) Requirements {
	switch t {
	case Histogram:
		return Requirements{NeedsX: true, NumericAxes: 1}
	case Scatter:
		return Requirements{NeedsX: true, NeedsY: true, NumericAxes: 2}
	case Scatter3D:
		return Requirements{NeedsX: true, NeedsY: true, NeedsZ: true, NumericAxes: 3}
	case Bubble:
		return Requirements{NeedsX: true, NeedsY: true, NeedsSize: true}
	case Pie, Donut:
		return Requirements{NeedsY: true, NumericY: true}
	case Heatmap:
		// x and y are the dimensions, z carries the numeric metric.
		return Requirements{NeedsX: true, NeedsY: true, NeedsZ: true, HeatmapShape: true}
	case Table:
		return Requirements{}
	default:
		// bar, line, box, area: one dimension, one measure
		return Requirements{NeedsX: true, NeedsY: true}
	}
}
