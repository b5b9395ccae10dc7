package query

import (
	"errors"
	"strconv"
	"strings"
)

// Limits are the performance guardrails applied when clamping the requested
// limit. Group cardinality, not row count, drives the cost of aggregated
// queries, so MaxGroups is far stricter than MaxRows.
type Limits struct {
	MaxRows   int
	MaxGroups int
}

// DefaultLimits returns the production guardrails.
func DefaultLimits() Limits {
	return Limits{MaxRows: 5000, MaxGroups: 50}
}

// SqlPlan is a synthesized, safe-to-execute SQL statement. BoundValues holds
// WHERE-clause parameters; no filter grammar exists yet, so it is always
// empty, but the slot keeps the executor interface parameter-ready.
type SqlPlan struct {
	SQL          string
	BoundValues  []any
	EffectiveCap int
	IsAggregated bool
}

// ErrNoColumns is returned when a normalized request selects nothing.
var ErrNoColumns = errors.New("at least one column must be selected")

// Builder turns validated requests into one of two SQL shapes: a plain
// column select or a single-table GROUP BY. It never sees an unvalidated
// request and never emits `*`.
type Builder struct {
	dialect Dialect
	limits  Limits
}

// NewBuilder creates a builder for the given dialect and guardrails.
func NewBuilder(dialect Dialect, limits Limits) *Builder {
	return &Builder{dialect: dialect, limits: limits}
}

// Build synthesizes the SQL plan for a validated request. Deterministic for
// a fixed request: the same normalized request always yields the same plan.
func (b *Builder) Build(nr *NormalizedRequest) (*SqlPlan, error) {
	if nr.IsAggregated() {
		return b.buildAggregated(nr)
	}

	return b.buildSelect(nr)
}

// buildSelect emits: SELECT TOP <cap> <cols> FROM <table> [ORDER BY <x>].
func (b *Builder) buildSelect(nr *NormalizedRequest) (*SqlPlan, error) {
	cols := nr.SelectedColumns()
	if len(cols) == 0 {
		return nil, ErrNoColumns
	}

	quoted := make([]string, len(cols))

	for i, col := range cols {
		q, err := QuoteIdent(col, b.dialect)
		if err != nil {
			return nil, err
		}

		quoted[i] = q
	}

	table, err := QuoteIdent(nr.Table, b.dialect)
	if err != nil {
		return nil, err
	}

	effectiveCap := clamp(nr.Limit, b.limits.MaxRows)

	var sb strings.Builder
	sb.WriteString(b.selectClause(effectiveCap))
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	if nr.XAxis != "" {
		x, err := QuoteIdent(nr.XAxis, b.dialect)
		if err != nil {
			return nil, err
		}

		sb.WriteString(" ORDER BY " + x)
	}

	b.appendLimit(&sb, effectiveCap)

	return &SqlPlan{
		SQL:          sb.String(),
		BoundValues:  []any{},
		EffectiveCap: effectiveCap,
		IsAggregated: false,
	}, nil
}

// buildAggregated emits:
// SELECT TOP <cap> <dim>[, <color>], <AGG>(<metric>) AS <alias>
// FROM <table> GROUP BY <dim>[, <color>] ORDER BY <alias> DESC.
func (b *Builder) buildAggregated(nr *NormalizedRequest) (*SqlPlan, error) {
	x, err := QuoteIdent(nr.XAxis, b.dialect)
	if err != nil {
		return nil, err
	}

	y, err := QuoteIdent(nr.YAxis, b.dialect)
	if err != nil {
		return nil, err
	}

	alias, err := QuoteIdent(nr.AggregateAlias(), b.dialect)
	if err != nil {
		return nil, err
	}

	table, err := QuoteIdent(nr.Table, b.dialect)
	if err != nil {
		return nil, err
	}

	groupCols := []string{x}

	if nr.Color != "" {
		color, err := QuoteIdent(nr.Color, b.dialect)
		if err != nil {
			return nil, err
		}

		groupCols = append(groupCols, color)
	}

	effectiveCap := clamp(nr.Limit, b.limits.MaxGroups)

	var sb strings.Builder
	sb.WriteString(b.selectClause(effectiveCap))
	sb.WriteString(strings.Join(groupCols, ", "))
	sb.WriteString(", " + string(nr.Aggregate) + "(" + y + ") AS " + alias)
	sb.WriteString(" FROM " + table)
	sb.WriteString(" GROUP BY " + strings.Join(groupCols, ", "))
	sb.WriteString(" ORDER BY " + alias + " DESC")
	b.appendLimit(&sb, effectiveCap)

	return &SqlPlan{
		SQL:          sb.String(),
		BoundValues:  []any{},
		EffectiveCap: effectiveCap,
		IsAggregated: true,
	}, nil
}

func (b *Builder) selectClause(n int) string {
	if b.dialect == DialectSQLServer {
		return "SELECT TOP " + strconv.Itoa(n) + " "
	}

	return "SELECT "
}

func (b *Builder) appendLimit(sb *strings.Builder, n int) {
	if b.dialect != DialectSQLServer {
		sb.WriteString(" LIMIT " + strconv.Itoa(n))
	}
}

// clamp applies min(requested, max) with a floor of 1; an unset (zero)
// request takes the full cap.
func clamp(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}

	return requested
}
