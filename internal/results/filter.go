// Package results holds the row representation shared by query execution,
// PII filtering, and chart shaping.
package results

import "github.com/vibecharting/chartsafe/internal/schema"

// Row is a single query result record keyed by column name.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}

// Filter strips denylisted columns from query results. It is the second,
// independent PII layer: the validator refuses denylisted columns before any
// SQL is built, and Filter removes them from whatever came back anyway.
type Filter struct {
	denylist schema.Denylist
}

// NewFilter creates a filter over the shared denylist.
func NewFilter(denylist schema.Denylist) *Filter {
	return &Filter{denylist: denylist}
}

// Strip removes every denylisted field from every row. Rows are copied only
// when they contain a denylisted field; clean rows pass through as-is.
func (f *Filter) Strip(rows []Row) []Row {
	out := make([]Row, len(rows))

	for i, row := range rows {
		out[i] = f.StripRow(row)
	}

	return out
}

// StripRow removes denylisted fields from a single record.
func (f *Filter) StripRow(row Row) Row {
	dirty := false

	for k := range row {
		if f.denylist.Contains(k) {
			dirty = true
			break
		}
	}

	if !dirty {
		return row
	}

	clean := make(Row, len(row))

	for k, v := range row {
		if !f.denylist.Contains(k) {
			clean[k] = v
		}
	}

	return clean
}
