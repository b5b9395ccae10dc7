package schema

import (
	"sort"
	"strings"
	"time"
)

// ColumnClass categorizes a column by its declared database type.
type ColumnClass string

const (
	ClassNumeric     ColumnClass = "numeric"
	ClassDate        ColumnClass = "date"
	ClassCategorical ColumnClass = "categorical"
)

// BaselineTables are production tables that must always resolve, even when
// live discovery is incomplete.
var BaselineTables = []string{"Account", "Contact", "Lead", "Opportunity"}

// TableSchema describes the columns of a single table, classified by type.
// PIIColumns is an orthogonal denylist tag: a PII column also appears in
// exactly one of the type buckets.
type TableSchema struct {
	Name               string   `json:"name"`
	AllColumns         []string `json:"all_columns"`
	NumericColumns     []string `json:"numeric_columns"`
	DateColumns        []string `json:"date_columns"`
	CategoricalColumns []string `json:"categorical_columns"`
	PIIColumns         []string `json:"pii_columns"`
}

// HasColumn reports whether the table contains the named column.
func (t *TableSchema) HasColumn(name string) bool {
	for _, c := range t.AllColumns {
		if c == name {
			return true
		}
	}

	return false
}

// IsNumeric reports whether the named column is in the numeric bucket.
func (t *TableSchema) IsNumeric(name string) bool {
	for _, c := range t.NumericColumns {
		if c == name {
			return true
		}
	}

	return false
}

// IsDate reports whether the named column is in the date bucket.
func (t *TableSchema) IsDate(name string) bool {
	for _, c := range t.DateColumns {
		if c == name {
			return true
		}
	}

	return false
}

// Catalog is an immutable snapshot of the discoverable schema. Readers never
// observe a partially built snapshot; Refresher swaps whole catalogs.
type Catalog struct {
	tables    map[string]*TableSchema
	denylist  Denylist
	builtAt   time.Time
	fromCache bool
}

// NewCatalog builds a snapshot from discovered table schemas. Tables named by
// the baseline allowlist that discovery missed are seeded with an empty
// column set so they still resolve. The denylist tags PII columns on every
// table that carries them.
func NewCatalog(tables []TableSchema, denylist Denylist) *Catalog {
	c := &Catalog{
		tables:   make(map[string]*TableSchema, len(tables)),
		denylist: denylist,
		builtAt:  time.Now(),
	}

	for i := range tables {
		t := tables[i]
		t.Name = StripSchemaPrefix(t.Name)
		t.PIIColumns = nil

		for _, col := range t.AllColumns {
			if denylist.Contains(col) {
				t.PIIColumns = append(t.PIIColumns, col)
			}
		}

		c.tables[t.Name] = &t
	}

	for _, name := range BaselineTables {
		if _, ok := c.tables[name]; !ok {
			c.tables[name] = &TableSchema{Name: name}
		}
	}

	return c
}

// Lookup resolves a table by name, stripping any schema prefix first
// (e.g. "dbo.Account" -> "Account").
func (c *Catalog) Lookup(tableName string) (*TableSchema, bool) {
	t, ok := c.tables[StripSchemaPrefix(tableName)]
	return t, ok
}

// TableNames returns all known table names in sorted order.
func (c *Catalog) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Denylist returns the PII denylist this snapshot was built with.
func (c *Catalog) Denylist() Denylist {
	return c.denylist
}

// BuiltAt returns the time the snapshot was assembled.
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}

// Describe renders the catalog as prompt-friendly text: one block per table
// listing each type bucket. PII columns are omitted so they never reach an
// LLM prompt.
func (c *Catalog) Describe() string {
	var b strings.Builder

	for _, name := range c.TableNames() {
		t := c.tables[name]
		b.WriteString("Table: " + name + "\n")
		b.WriteString("  All Columns: " + strings.Join(c.withoutPII(t.AllColumns), ", ") + "\n")
		b.WriteString("  Numerical Columns: " + strings.Join(c.withoutPII(t.NumericColumns), ", ") + "\n")
		b.WriteString("  Date Columns: " + strings.Join(c.withoutPII(t.DateColumns), ", ") + "\n")
		b.WriteString("  Categorical Columns: " + strings.Join(c.withoutPII(t.CategoricalColumns), ", ") + "\n")
	}

	return b.String()
}

func (c *Catalog) withoutPII(cols []string) []string {
	out := make([]string, 0, len(cols))

	for _, col := range cols {
		if !c.denylist.Contains(col) {
			out = append(out, col)
		}
	}

	return out
}

// StripSchemaPrefix normalizes "dbo.Account" to "Account". Names without a
// prefix pass through unchanged.
func StripSchemaPrefix(tableName string) string {
	if idx := strings.LastIndex(tableName, "."); idx >= 0 {
		return tableName[idx+1:]
	}

	return tableName
}

// ClassifyType maps a declared SQL data type onto a column class. Covers the
// SQL Server type names plus the DuckDB equivalents.
func ClassifyType(dataType string) ColumnClass {
	switch strings.ToLower(dataType) {
	case "int", "smallint", "bigint", "tinyint", "decimal", "numeric",
		"real", "float", "money", "smallmoney", "bit",
		"integer", "hugeint", "double", "ubigint", "uinteger":
		return ClassNumeric
	case "date", "datetime", "datetime2", "smalldatetime", "timestamp",
		"time", "datetimeoffset", "timestamp with time zone":
		return ClassDate
	default:
		return ClassCategorical
	}
}
