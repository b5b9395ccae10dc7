package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecharting/chartsafe/internal/chart"
	"github.com/vibecharting/chartsafe/internal/schema"
)

// testCatalog builds a catalog with a CRM-shaped Account and Opportunity
// table, Email denylisted on both.
func testCatalog() *schema.Catalog {
	tables := []schema.TableSchema{
		{
			Name:               "Account",
			AllColumns:         []string{"Name", "Industry", "Region", "AnnualRevenue", "NumberOfEmployees", "CreatedDate", "Email"},
			NumericColumns:     []string{"AnnualRevenue", "NumberOfEmployees"},
			DateColumns:        []string{"CreatedDate"},
			CategoricalColumns: []string{"Name", "Industry", "Region", "Email"},
		},
		{
			Name:               "Opportunity",
			AllColumns:         []string{"Name", "StageName", "Amount", "Probability", "CloseDate"},
			NumericColumns:     []string{"Amount", "Probability"},
			DateColumns:        []string{"CloseDate"},
			CategoricalColumns: []string{"Name", "StageName"},
		},
	}

	return schema.NewCatalog(tables, schema.DefaultDenylist())
}

func TestValidate_AcceptsAggregatedBarChart(t *testing.T) {
	v := NewValidator()

	nr, err := v.Validate(&ChartRequest{
		TableName:  "Account",
		ChartType:  "bar_chart",
		XAxis:      "Industry",
		YAxis:      "AnnualRevenue",
		AggregateY: "SUM",
	}, testCatalog())

	require.NoError(t, err)
	assert.Equal(t, "Account", nr.Table)
	assert.Equal(t, chart.Bar, nr.ChartType)
	assert.Equal(t, AggSum, nr.Aggregate)
	assert.True(t, nr.IsAggregated())
	assert.Equal(t, "Sum of AnnualRevenue", nr.AggregateAlias())
}

func TestValidate_StripsSchemaPrefix(t *testing.T) {
	v := NewValidator()

	nr, err := v.Validate(&ChartRequest{
		TableName: "dbo.Opportunity",
		ChartType: "table",
		XAxis:     "StageName",
	}, testCatalog())

	require.NoError(t, err)
	assert.Equal(t, "Opportunity", nr.Table)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		req      ChartRequest
		wantKind Kind
	}{
		{
			name:     "unknown chart type",
			req:      ChartRequest{TableName: "Account", ChartType: "sunburst", XAxis: "Industry"},
			wantKind: KindUnknownChartType,
		},
		{
			name:     "unknown table",
			req:      ChartRequest{TableName: "Invoices", ChartType: "table"},
			wantKind: KindUnknownTable,
		},
		{
			name:     "injection-shaped table name",
			req:      ChartRequest{TableName: "Account; DROP TABLE Account--", ChartType: "table"},
			wantKind: KindUnknownTable,
		},
		{
			name:     "empty table name",
			req:      ChartRequest{ChartType: "table"},
			wantKind: KindUnknownTable,
		},
		{
			name:     "unknown column",
			req:      ChartRequest{TableName: "Account", ChartType: "bar_chart", XAxis: "Industry", YAxis: "Profit"},
			wantKind: KindUnknownColumn,
		},
		{
			name:     "injection-shaped column name",
			req:      ChartRequest{TableName: "Account", ChartType: "bar_chart", XAxis: "Industry", YAxis: "AnnualRevenue]; DROP TABLE Account--"},
			wantKind: KindUnknownColumn,
		},
		{
			name:     "pii column on x axis",
			req:      ChartRequest{TableName: "Account", ChartType: "bar_chart", XAxis: "Email", YAxis: "AnnualRevenue"},
			wantKind: KindPiiViolation,
		},
		{
			name:     "pii column on color",
			req:      ChartRequest{TableName: "Account", ChartType: "bar_chart", XAxis: "Industry", YAxis: "AnnualRevenue", Color: "Email"},
			wantKind: KindPiiViolation,
		},
		{
			name:     "unknown aggregation",
			req:      ChartRequest{TableName: "Account", ChartType: "bar_chart", XAxis: "Industry", YAxis: "AnnualRevenue", AggregateY: "MEDIAN"},
			wantKind: KindUnknownAggregation,
		},
		{
			name:     "aggregate over non-numeric column",
			req:      ChartRequest{TableName: "Account", ChartType: "bar_chart", XAxis: "Industry", YAxis: "Region", AggregateY: "SUM"},
			wantKind: KindNonNumericAggTarget,
		},
		{
			name:     "scatter missing y axis",
			req:      ChartRequest{TableName: "Account", ChartType: "scatter_plot", XAxis: "AnnualRevenue"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "scatter with categorical axis",
			req:      ChartRequest{TableName: "Account", ChartType: "scatter_plot", XAxis: "Industry", YAxis: "AnnualRevenue"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "3d scatter missing z axis",
			req:      ChartRequest{TableName: "Account", ChartType: "3d_scatter_plot", XAxis: "AnnualRevenue", YAxis: "NumberOfEmployees"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "bubble missing size",
			req:      ChartRequest{TableName: "Account", ChartType: "bubble_chart", XAxis: "AnnualRevenue", YAxis: "NumberOfEmployees"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "bubble with non-numeric size",
			req:      ChartRequest{TableName: "Account", ChartType: "bubble_chart", XAxis: "AnnualRevenue", YAxis: "NumberOfEmployees", Size: "Industry"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "histogram missing x axis",
			req:      ChartRequest{TableName: "Account", ChartType: "histogram"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "heatmap with numeric dimension",
			req:      ChartRequest{TableName: "Account", ChartType: "heatmap", XAxis: "AnnualRevenue", YAxis: "Industry", ZAxis: "NumberOfEmployees"},
			wantKind: KindMissingRequiredField,
		},
		{
			name:     "negative limit",
			req:      ChartRequest{TableName: "Account", ChartType: "table", XAxis: "Industry", Limit: -5},
			wantKind: KindMissingRequiredField,
		},
	}

	v := NewValidator()
	cat := testCatalog()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nr, err := v.Validate(&tt.req, cat)
			require.Error(t, err)
			assert.Nil(t, nr)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantKind, verr.Kind)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

// A real, well-typed column is still rejected when denylisted: the PII check
// runs after the existence check and fires regardless of the type bucket or
// axis role the column fills.
func TestValidate_PiiRejectedEvenWhenColumnExists(t *testing.T) {
	tables := []schema.TableSchema{
		{
			Name:               "Contact",
			AllColumns:         []string{"FullName", "Title", "Email"},
			CategoricalColumns: []string{"FullName", "Title", "Email"},
		},
	}
	cat := schema.NewCatalog(tables, schema.DefaultDenylist())

	v := NewValidator()

	_, err := v.Validate(&ChartRequest{
		TableName: "Contact",
		ChartType: "table",
		XAxis:     "FullName",
		YAxis:     "Email",
	}, cat)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindPiiViolation, verr.Kind)
}

func TestValidate_ChartTypeAliasNormalization(t *testing.T) {
	v := NewValidator()
	cat := testCatalog()

	tests := []struct {
		raw  string
		want chart.Type
	}{
		{"bar", chart.Bar},
		{"Bar Chart", chart.Bar},
		{"doughnut", chart.Donut},
		{"3d", chart.Scatter3D},
		{"scatter-plot", chart.Scatter},
	}

	for _, tt := range tests {
		req := &ChartRequest{TableName: "Account", ChartType: tt.raw, XAxis: "Industry", YAxis: "AnnualRevenue"}
		if tt.want == chart.Scatter || tt.want == chart.Scatter3D {
			req.XAxis = "AnnualRevenue"
			req.YAxis = "NumberOfEmployees"
			req.ZAxis = "AnnualRevenue"
		}

		nr, err := v.Validate(req, cat)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, nr.ChartType, tt.raw)
	}
}

func TestValidate_HistogramDropsAggregation(t *testing.T) {
	v := NewValidator()

	nr, err := v.Validate(&ChartRequest{
		TableName:  "Opportunity",
		ChartType:  "histogram",
		XAxis:      "Amount",
		YAxis:      "Probability",
		AggregateY: "AVG",
	}, testCatalog())

	require.NoError(t, err)
	assert.Equal(t, "", nr.YAxis)
	assert.Equal(t, AggNone, nr.Aggregate)
	assert.False(t, nr.IsAggregated())
}

func TestValidate_CountAllowsNonNumericTarget(t *testing.T) {
	v := NewValidator()

	nr, err := v.Validate(&ChartRequest{
		TableName:  "Account",
		ChartType:  "bar_chart",
		XAxis:      "Industry",
		YAxis:      "Region",
		AggregateY: "count",
	}, testCatalog())

	require.NoError(t, err)
	assert.Equal(t, AggCount, nr.Aggregate)
	assert.Equal(t, "Count of Region", nr.AggregateAlias())
}

func TestValidate_ErrorCarriesAllowedSet(t *testing.T) {
	v := NewValidator()
	cat := testCatalog()

	_, err := v.Validate(&ChartRequest{
		TableName: "Campaigns",
		ChartType: "table",
	}, cat)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, cat.TableNames(), verr.Available)

	wire := verr.Wire()
	assert.Equal(t, verr.Message, wire.Error)
	assert.Equal(t, cat.TableNames(), wire.AvailableTables)
	assert.Empty(t, wire.AvailableColumns)
}

func TestValidate_PiiErrorExcludesDenylistedColumns(t *testing.T) {
	v := NewValidator()

	_, err := v.Validate(&ChartRequest{
		TableName: "Account",
		ChartType: "bar_chart",
		XAxis:     "Email",
		YAxis:     "AnnualRevenue",
	}, testCatalog())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindPiiViolation, verr.Kind)
	assert.NotContains(t, verr.Available, "Email")
	assert.Contains(t, verr.Available, "Industry")
}
