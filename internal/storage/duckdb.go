package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver

	"github.com/vibecharting/chartsafe/internal/config"
	"github.com/vibecharting/chartsafe/internal/errors"
	"github.com/vibecharting/chartsafe/internal/logging"
	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/results"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// DuckDBStore executes plans against a local DuckDB file. It backs demos and
// tests; the production path is SQLServerStore.
type DuckDBStore struct {
	db           *sql.DB
	path         string
	queryTimeout time.Duration
}

// NewDuckDBStore opens (creating if needed) a DuckDB database file.
func NewDuckDBStore(cfg *config.Config) (*DuckDBStore, error) {
	return newDuckDBStore(cfg.Database.DuckDBPath, cfg.QueryTimeoutDuration())
}

func newDuckDBStore(path string, queryTimeout time.Duration) (*DuckDBStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, errors.ErrTypeDatabase, "failed to create database directory")
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.NewDatabaseError(err, "open duckdb database")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.NewDatabaseError(err, "ping duckdb database")
	}

	return &DuckDBStore{db: db, path: path, queryTimeout: queryTimeout}, nil
}

func (s *DuckDBStore) Dialect() query.Dialect {
	return query.DialectDuckDB
}

// ExecutePlan runs a synthesized plan under the configured query timeout.
func (s *DuckDBStore) ExecutePlan(
	ctx context.Context,
	plan *query.SqlPlan,
) ([]results.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, plan.SQL, plan.BoundValues...)
	if err != nil {
		logging.WithError(err).Error("chart query failed")
		return nil, errors.NewDatabaseError(err, "execute chart query")
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, errors.NewDatabaseError(err, "read chart query results")
	}

	return out, nil
}

const duckDBTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'main' AND table_type = 'BASE TABLE'`

const duckDBColumnsQuery = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = 'main' AND table_name = ?
ORDER BY ordinal_position`

// DiscoverTables reads table metadata from DuckDB's information_schema.
func (s *DuckDBStore) DiscoverTables(ctx context.Context) ([]schema.TableSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, duckDBTablesQuery)
	if err != nil {
		return nil, errors.NewDatabaseError(err, "discover tables")
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewDatabaseError(err, "scan table metadata")
		}

		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError(err, "iterate table metadata")
	}

	tables := make([]schema.TableSchema, 0, len(names))

	for _, name := range names {
		table, err := s.discoverColumns(ctx, name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (s *DuckDBStore) discoverColumns(
	ctx context.Context,
	tableName string,
) (schema.TableSchema, error) {
	table := schema.TableSchema{Name: tableName}

	rows, err := s.db.QueryContext(ctx, duckDBColumnsQuery, tableName)
	if err != nil {
		return table, errors.NewDatabaseError(err, "discover columns")
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return table, errors.NewDatabaseError(err, "scan column metadata")
		}

		table.AllColumns = append(table.AllColumns, name)

		switch schema.ClassifyType(dataType) {
		case schema.ClassNumeric:
			table.NumericColumns = append(table.NumericColumns, name)
		case schema.ClassDate:
			table.DateColumns = append(table.DateColumns, name)
		default:
			table.CategoricalColumns = append(table.CategoricalColumns, name)
		}
	}

	if err := rows.Err(); err != nil {
		return table, errors.NewDatabaseError(err, "iterate column metadata")
	}

	return table, nil
}

func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
