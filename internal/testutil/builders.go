// Package testutil provides shared builders and mocks for tests.
package testutil

import (
	"github.com/vibecharting/chartsafe/internal/query"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// TableOption is a functional option for building test table schemas.
type TableOption func(*schema.TableSchema)

// NewTestTable creates a table schema with sensible defaults for testing.
func NewTestTable(name string, opts ...TableOption) schema.TableSchema {
	t := schema.TableSchema{Name: name}

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

// WithCategoricalColumns adds categorical columns to the table.
func WithCategoricalColumns(cols ...string) TableOption {
	return func(t *schema.TableSchema) {
		t.CategoricalColumns = append(t.CategoricalColumns, cols...)
		t.AllColumns = append(t.AllColumns, cols...)
	}
}

// WithNumericColumns adds numeric columns to the table.
func WithNumericColumns(cols ...string) TableOption {
	return func(t *schema.TableSchema) {
		t.NumericColumns = append(t.NumericColumns, cols...)
		t.AllColumns = append(t.AllColumns, cols...)
	}
}

// WithDateColumns adds date columns to the table.
func WithDateColumns(cols ...string) TableOption {
	return func(t *schema.TableSchema) {
		t.DateColumns = append(t.DateColumns, cols...)
		t.AllColumns = append(t.AllColumns, cols...)
	}
}

// NewTestCatalog builds a catalog over the given tables with the default
// PII denylist.
func NewTestCatalog(tables ...schema.TableSchema) *schema.Catalog {
	return schema.NewCatalog(tables, schema.DefaultDenylist())
}

// CRMTables returns the table set most tests validate against: an Account
// table with mixed column classes and an Opportunity table, both carrying a
// denylisted Email column on Account.
func CRMTables() []schema.TableSchema {
	return []schema.TableSchema{
		NewTestTable("Account",
			WithCategoricalColumns("Name", "Industry", "Region", "Email"),
			WithNumericColumns("AnnualRevenue", "NumberOfEmployees"),
			WithDateColumns("CreatedDate"),
		),
		NewTestTable("Opportunity",
			WithCategoricalColumns("Name", "StageName"),
			WithNumericColumns("Amount", "Probability"),
			WithDateColumns("CloseDate"),
		),
	}
}

// RequestOption is a functional option for building test chart requests.
type RequestOption func(*query.ChartRequest)

// NewTestRequest creates an aggregated bar request, the shape most pipeline
// tests start from, then applies options.
func NewTestRequest(opts ...RequestOption) *query.ChartRequest {
	req := &query.ChartRequest{
		TableName:  "Account",
		ChartType:  "bar",
		XAxis:      "Industry",
		YAxis:      "AnnualRevenue",
		AggregateY: "SUM",
	}

	for _, opt := range opts {
		opt(req)
	}

	return req
}

// WithTable sets the request's table name.
func WithTable(name string) RequestOption {
	return func(r *query.ChartRequest) {
		r.TableName = name
	}
}

// WithChartType sets the request's chart type.
func WithChartType(ct string) RequestOption {
	return func(r *query.ChartRequest) {
		r.ChartType = ct
	}
}

// WithAxes sets the x and y axes.
func WithAxes(x, y string) RequestOption {
	return func(r *query.ChartRequest) {
		r.XAxis = x
		r.YAxis = y
	}
}

// WithAggregation sets the y aggregation.
func WithAggregation(agg string) RequestOption {
	return func(r *query.ChartRequest) {
		r.AggregateY = agg
	}
}

// WithLimit sets the requested row limit.
func WithLimit(n int) RequestOption {
	return func(r *query.ChartRequest) {
		r.Limit = n
	}
}
