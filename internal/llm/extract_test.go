package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare json",
			content: `{"table_name": "Account", "chart_type": "bar_chart"}`,
			want:    `{"table_name": "Account", "chart_type": "bar_chart"}`,
		},
		{
			name:    "fenced with language tag",
			content: "Here you go:\n```json\n{\"table_name\": \"Account\"}\n```\nLet me know!",
			want:    `{"table_name": "Account"}`,
		},
		{
			name:    "fenced without language tag",
			content: "```\n{\"chart_type\": \"pie_chart\"}\n```",
			want:    `{"chart_type": "pie_chart"}`,
		},
		{
			name:    "object embedded in prose",
			content: `Sure! The request is {"table_name": "Lead", "limit": 10} as requested.`,
			want:    `{"table_name": "Lead", "limit": 10}`,
		},
		{
			name:    "nested object in prose",
			content: `Result: {"a": {"b": "}"}, "c": 1} done`,
			want:    `{"a": {"b": "}"}, "c": 1}`,
		},
		{
			name:    "braces inside string literals",
			content: `{"title": "Revenue {by} industry", "table_name": "Account"}`,
			want:    `{"title": "Revenue {by} industry", "table_name": "Account"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.content)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Failures(t *testing.T) {
	for _, content := range []string{
		"",
		"   ",
		"no json here at all",
		`{"unterminated": `,
		"``` not closed",
	} {
		_, err := ExtractJSON(content)
		assert.Error(t, err, content)
	}
}

func TestDecodeChartRequest(t *testing.T) {
	req, err := decodeChartRequest("```json\n" +
		`{"table": "Account", "type": "bar", "x": "Industry", "y": "AnnualRevenue", "aggregate": "SUM"}` +
		"\n```")
	require.NoError(t, err)

	// Field aliases resolve during decode.
	assert.Equal(t, "Account", req.TableName)
	assert.Equal(t, "bar", req.ChartType)
	assert.Equal(t, "Industry", req.XAxis)
	assert.Equal(t, "AnnualRevenue", req.YAxis)
	assert.Equal(t, "SUM", req.AggregateY)
}
