package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecharting/chartsafe/internal/chart"
)

func TestBuilder_PlainSelect(t *testing.T) {
	b := NewBuilder(DialectSQLServer, DefaultLimits())

	plan, err := b.Build(&NormalizedRequest{
		Table:     "Account",
		ChartType: chart.Scatter,
		XAxis:     "AnnualRevenue",
		YAxis:     "NumberOfEmployees",
	})

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT TOP 5000 [AnnualRevenue], [NumberOfEmployees] FROM [Account] ORDER BY [AnnualRevenue]",
		plan.SQL)
	assert.Equal(t, 5000, plan.EffectiveCap)
	assert.False(t, plan.IsAggregated)
	assert.Empty(t, plan.BoundValues)
}

func TestBuilder_AggregatedSelect(t *testing.T) {
	b := NewBuilder(DialectSQLServer, DefaultLimits())

	plan, err := b.Build(&NormalizedRequest{
		Table:     "Account",
		ChartType: chart.Bar,
		XAxis:     "Industry",
		YAxis:     "AnnualRevenue",
		Aggregate: AggSum,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT TOP 50 [Industry], SUM([AnnualRevenue]) AS [Sum of AnnualRevenue] "+
			"FROM [Account] GROUP BY [Industry] ORDER BY [Sum of AnnualRevenue] DESC",
		plan.SQL)
	assert.Equal(t, 50, plan.EffectiveCap)
	assert.True(t, plan.IsAggregated)
}

func TestBuilder_AggregatedWithColorGroupsBoth(t *testing.T) {
	b := NewBuilder(DialectSQLServer, DefaultLimits())

	plan, err := b.Build(&NormalizedRequest{
		Table:     "Opportunity",
		ChartType: chart.Bar,
		XAxis:     "StageName",
		YAxis:     "Amount",
		Color:     "Name",
		Aggregate: AggAvg,
	})

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT TOP 50 [StageName], [Name], AVG([Amount]) AS [Average of Amount] "+
			"FROM [Opportunity] GROUP BY [StageName], [Name] ORDER BY [Average of Amount] DESC",
		plan.SQL)
}

func TestBuilder_ClampsLimits(t *testing.T) {
	tests := []struct {
		name       string
		nr         NormalizedRequest
		wantCap    int
		wantPrefix string
	}{
		{
			name:       "unset limit takes full row cap",
			nr:         NormalizedRequest{Table: "Account", XAxis: "Industry"},
			wantCap:    5000,
			wantPrefix: "SELECT TOP 5000 ",
		},
		{
			name:       "requested limit below cap is honored",
			nr:         NormalizedRequest{Table: "Account", XAxis: "Industry", Limit: 100},
			wantCap:    100,
			wantPrefix: "SELECT TOP 100 ",
		},
		{
			name:       "oversized limit clamps to row cap",
			nr:         NormalizedRequest{Table: "Account", XAxis: "Industry", Limit: 999999},
			wantCap:    5000,
			wantPrefix: "SELECT TOP 5000 ",
		},
		{
			name: "aggregated requests clamp to group cap",
			nr: NormalizedRequest{
				Table: "Account", XAxis: "Industry", YAxis: "AnnualRevenue",
				Aggregate: AggSum, Limit: 2000,
			},
			wantCap:    50,
			wantPrefix: "SELECT TOP 50 ",
		},
	}

	b := NewBuilder(DialectSQLServer, DefaultLimits())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := b.Build(&tt.nr)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCap, plan.EffectiveCap)
			assert.True(t, len(plan.SQL) > len(tt.wantPrefix))
			assert.Equal(t, tt.wantPrefix, plan.SQL[:len(tt.wantPrefix)])
		})
	}
}

func TestBuilder_DuckDBDialect(t *testing.T) {
	b := NewBuilder(DialectDuckDB, Limits{MaxRows: 100, MaxGroups: 10})

	plan, err := b.Build(&NormalizedRequest{
		Table:     "Account",
		ChartType: chart.Bar,
		XAxis:     "Industry",
		YAxis:     "AnnualRevenue",
		Aggregate: AggCount,
	})

	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "Industry", COUNT("AnnualRevenue") AS "Count of AnnualRevenue" `+
			`FROM "Account" GROUP BY "Industry" ORDER BY "Count of AnnualRevenue" DESC LIMIT 10`,
		plan.SQL)
}

func TestBuilder_Deterministic(t *testing.T) {
	b := NewBuilder(DialectSQLServer, DefaultLimits())

	nr := &NormalizedRequest{
		Table:     "Opportunity",
		ChartType: chart.Bar,
		XAxis:     "StageName",
		YAxis:     "Amount",
		Aggregate: AggMax,
		Limit:     25,
	}

	first, err := b.Build(nr)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		plan, err := b.Build(nr)
		require.NoError(t, err)
		assert.Equal(t, first.SQL, plan.SQL)
	}
}

func TestBuilder_DeduplicatesSelectedColumns(t *testing.T) {
	b := NewBuilder(DialectSQLServer, DefaultLimits())

	plan, err := b.Build(&NormalizedRequest{
		Table: "Account",
		XAxis: "Industry",
		YAxis: "Industry",
		Color: "Industry",
	})

	require.NoError(t, err)
	assert.Equal(t, "SELECT TOP 5000 [Industry] FROM [Account] ORDER BY [Industry]", plan.SQL)
}

func TestBuilder_NoColumns(t *testing.T) {
	b := NewBuilder(DialectSQLServer, DefaultLimits())

	_, err := b.Build(&NormalizedRequest{Table: "Account"})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{"AnnualRevenue", DialectSQLServer, "[AnnualRevenue]"},
		{"Sum of Amount", DialectSQLServer, "[Sum of Amount]"},
		{"we]ird", DialectSQLServer, "[we]]ird]"},
		{"x]]; DROP TABLE t--", DialectSQLServer, "[x]]]]; DROP TABLE t--]"},
		{"AnnualRevenue", DialectDuckDB, `"AnnualRevenue"`},
		{`we"ird`, DialectDuckDB, `"we""ird"`},
	}

	for _, tt := range tests {
		got, err := QuoteIdent(tt.name, tt.dialect)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := QuoteIdent("", DialectSQLServer)
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}
