package schema

// Denylist is the single source of truth for which column names carry PII.
// Both the request validator and the post-query result filter consult the
// same instance, so the two protection layers cannot drift apart.
type Denylist map[string]struct{}

// DefaultDenylist covers the columns that must never be selected or returned.
func DefaultDenylist() Denylist {
	return NewDenylist("Email")
}

// NewDenylist builds a denylist from column names.
func NewDenylist(columns ...string) Denylist {
	d := make(Denylist, len(columns))
	for _, c := range columns {
		d[c] = struct{}{}
	}

	return d
}

// Contains reports whether the column name is denylisted. Matching is
// case-sensitive, mirroring catalog column names.
func (d Denylist) Contains(column string) bool {
	_, ok := d[column]
	return ok
}

// Columns returns the denylisted names, order unspecified.
func (d Denylist) Columns() []string {
	out := make([]string, 0, len(d))
	for c := range d {
		out = append(out, c)
	}

	return out
}
