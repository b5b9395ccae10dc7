package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver

	"github.com/vibecharting/chartsafe/internal/config"
	"github.com/vibecharting/chartsafe/internal/errors"
	"github.com/vibecharting/chartsafe/internal/logging"
	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/results"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// SQLServerStore executes plans against a live SQL Server database.
type SQLServerStore struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewSQLServerStore opens a SQL Server connection pool from configuration.
func NewSQLServerStore(cfg *config.Config) (*SQLServerStore, error) {
	if cfg.Database.ConnString == "" {
		return nil, errors.NewConfigError("connection string is required", "database.conn_string")
	}

	db, err := sql.Open("sqlserver", cfg.Database.ConnString)
	if err != nil {
		return nil, errors.NewDatabaseError(err, "open connection")
	}

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.NewDatabaseError(err, "ping")
	}

	return &SQLServerStore{
		db:           db,
		queryTimeout: cfg.QueryTimeoutDuration(),
	}, nil
}

func (s *SQLServerStore) Dialect() query.Dialect {
	return query.DialectSQLServer
}

// ExecutePlan runs a synthesized plan under the configured query timeout.
// The returned error never contains SQL text or connection details.
func (s *SQLServerStore) ExecutePlan(
	ctx context.Context,
	plan *query.SqlPlan,
) ([]results.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()

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

	logging.WithFields(map[string]interface{}{
		"rows":     len(out),
		"duration": time.Since(start),
	}).Debug("chart query executed")

	return out, nil
}

const sqlServerTablesQuery = `
SELECT TABLE_SCHEMA, TABLE_NAME
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'`

const sqlServerColumnsQuery = `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`

// DiscoverTables reads table and column metadata from INFORMATION_SCHEMA and
// classifies each column by its declared type.
func (s *SQLServerStore) DiscoverTables(ctx context.Context) ([]schema.TableSchema, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, sqlServerTablesQuery)
	if err != nil {
		return nil, errors.NewDatabaseError(err, "discover tables")
	}
	defer rows.Close()

	type tableRef struct {
		schemaName string
		name       string
	}

	var refs []tableRef

	for rows.Next() {
		var ref tableRef
		if err := rows.Scan(&ref.schemaName, &ref.name); err != nil {
			return nil, errors.NewDatabaseError(err, "scan table metadata")
		}

		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError(err, "iterate table metadata")
	}

	tables := make([]schema.TableSchema, 0, len(refs))

	for _, ref := range refs {
		table, err := s.discoverColumns(ctx, ref.schemaName, ref.name)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (s *SQLServerStore) discoverColumns(
	ctx context.Context,
	schemaName, tableName string,
) (schema.TableSchema, error) {
	table := schema.TableSchema{Name: fmt.Sprintf("%s.%s", schemaName, tableName)}

	rows, err := s.db.QueryContext(ctx, sqlServerColumnsQuery,
		sql.Named("p1", schemaName), sql.Named("p2", tableName))
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

func (s *SQLServerStore) Close() error {
	return s.db.Close()
}
