package chart

import "strings"

// aliases maps every historical and shorthand spelling onto the canonical
// vocabulary. Keys are pre-normalized: lowercase with underscores.
var aliases = map[string]Type{
	"bar":             Bar,
	"bar_chart":       Bar,
	"stacked_bar":     Bar,
	"line":            Line,
	"line_chart":      Line,
	"pie":             Pie,
	"pie_chart":       Pie,
	"donut":           Donut,
	"donut_chart":     Donut,
	"doughnut":        Donut,
	"doughnut_chart":  Donut,
	"scatter":         Scatter,
	"scatter_plot":    Scatter,
	"histogram":       Histogram,
	"distribution":    Histogram,
	"3d":              Scatter3D,
	"3d_chart":        Scatter3D,
	"3d_scatter":      Scatter3D,
	"3d_scatter_plot": Scatter3D,
	"heatmap":         Heatmap,
	"heat_map":        Heatmap,
	"bubble":          Bubble,
	"bubble_chart":    Bubble,
	"table":           Table,
	"grid":            Table,
	"box":             Box,
	"box_plot":        Box,
	"area":            Area,
	"area_chart":      Area,
}

// NormalizeType maps a raw chart-type spelling onto the canonical vocabulary:
// lowercase, spaces and hyphens become underscores, then the alias table is
// applied. Unrecognized spellings pass through unchanged and will fail
// validation against the canonical allowlist. Idempotent: canonical values
// map to themselves.
func NormalizeType(raw string) Type {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	if canonical, ok := aliases[normalized]; ok {
		return canonical
	}

	return Type(normalized)
}
