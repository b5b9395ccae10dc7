// Package storage executes synthesized SQL plans and discovers live schema
// metadata. It is the only package that touches a database; everything it
// runs has already been validated and quoted upstream.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/results"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// Store is a query backend: it executes plans and discovers table schemas.
type Store interface {
	schema.Discoverer

	// ExecutePlan runs a synthesized plan and returns the result rows.
	ExecutePlan(ctx context.Context, plan *query.SqlPlan) ([]results.Row, error)

	// Dialect reports the SQL dialect plans for this store must target.
	Dialect() query.Dialect

	Close() error
}

// scanRows converts a generic result set into result rows, preserving the
// driver's column order within each row map.
func scanRows(rows *sql.Rows) ([]results.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	out := make([]results.Row, 0)

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(results.Row, len(cols))
		for i, col := range cols {
			// Drivers hand back []byte for text columns; normalize so the
			// shaping and filtering layers see plain strings.
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("result iteration failed: %w", err)
	}

	return out, nil
}
