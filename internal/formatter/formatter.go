// Package formatter renders chart responses and rejections for terminal
// output.
package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vibecharting/chartsafe/internal/results"
	"github.com/vibecharting/chartsafe/internal/service"
)

// Formatter handles chart response output formatting
type Formatter struct {
	// MaxRows bounds how many data rows Response prints; 0 means all.
	MaxRows int
}

// NewFormatter creates a new formatter instance
func NewFormatter(maxRows int) *Formatter {
	return &Formatter{MaxRows: maxRows}
}

// Response renders an accepted chart response: title, chart type, advisory
// notes, the synthesized SQL, and the data rows in a stable field order.
func (f *Formatter) Response(resp *service.Response) string {
	var lines []string

	if resp.Title != "" {
		lines = append(lines, resp.Title)
	}

	header := fmt.Sprintf("Chart: %s", resp.Spec.Type)
	if resp.Cached {
		header += " (cached)"
	}

	lines = append(lines, header)

	if resp.Spec.Reason != "" {
		lines = append(lines, fmt.Sprintf("Note: %s", resp.Spec.Reason))
	}

	for _, w := range resp.Spec.Warnings {
		lines = append(lines, fmt.Sprintf("Warning: %s", w))
	}

	lines = append(lines, fmt.Sprintf("SQL: %s", resp.SQL), "")

	shown := resp.Rows
	if f.MaxRows > 0 && len(shown) > f.MaxRows {
		shown = shown[:f.MaxRows]
	}

	fields := FieldOrder(resp, shown)
	for _, row := range shown {
		lines = append(lines, "  "+formatRow(row, fields))
	}

	if len(resp.Rows) > len(shown) {
		lines = append(lines, fmt.Sprintf("... %d more rows", len(resp.Rows)-len(shown)))
	}

	return strings.Join(lines, "\n")
}

// Rejection renders a structured rejection with whichever allowed set the
// validator attached.
func (f *Formatter) Rejection(r *service.Rejection) string {
	lines := []string{fmt.Sprintf("Rejected: %s", r.Wire.Error)}

	if len(r.Wire.AvailableTables) > 0 {
		lines = append(lines, "Available tables: "+strings.Join(r.Wire.AvailableTables, ", "))
	}

	if len(r.Wire.AvailableColumns) > 0 {
		lines = append(lines, "Available columns: "+strings.Join(r.Wire.AvailableColumns, ", "))
	}

	if len(r.Wire.NumericColumns) > 0 {
		lines = append(lines, "Numeric columns: "+strings.Join(r.Wire.NumericColumns, ", "))
	}

	return strings.Join(lines, "\n")
}

// FieldOrder determines a stable print order: the chart axes first, then any
// remaining columns sorted by name.
func FieldOrder(resp *service.Response, rows []results.Row) []string {
	var fields []string

	seen := map[string]bool{}
	add := func(f string) {
		if f != "" && !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}

	add(resp.Spec.XField)
	add(resp.Spec.YField)
	add(resp.Spec.ZField)

	if len(rows) > 0 {
		rest := make([]string, 0, len(rows[0]))
		for k := range rows[0] {
			if !seen[k] {
				rest = append(rest, k)
			}
		}

		sort.Strings(rest)

		for _, k := range rest {
			add(k)
		}
	}

	return fields
}

func formatRow(row results.Row, fields []string) string {
	parts := make([]string, 0, len(fields))

	for _, f := range fields {
		if v, ok := row[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", f, v))
		}
	}

	return strings.Join(parts, "  ")
}
