package query

import (
	"errors"
	"strings"
)

// Dialect selects the identifier quoting and row-limiting syntax. The quoter
// has no decision authority: it only encodes identifiers that validation has
// already accepted.
type Dialect string

const (
	// DialectSQLServer emits bracket-quoted identifiers and TOP limits.
	DialectSQLServer Dialect = "sqlserver"
	// DialectDuckDB emits double-quoted identifiers and trailing LIMIT.
	DialectDuckDB Dialect = "duckdb"
)

// ErrEmptyIdentifier is returned when an empty name reaches the quoter.
var ErrEmptyIdentifier = errors.New("identifier name cannot be empty")

// QuoteIdent wraps a validated identifier in dialect delimiters, doubling any
// embedded closing delimiter. Quoting is applied after validation, never as a
// substitute for it.
func QuoteIdent(name string, dialect Dialect) (string, error) {
	if name == "" {
		return "", ErrEmptyIdentifier
	}

	if dialect == DialectDuckDB {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
	}

	return "[" + strings.ReplaceAll(name, "]", "]]") + "]", nil
}
