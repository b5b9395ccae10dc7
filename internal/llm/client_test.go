package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chartsafeerrors "github.com/vibecharting/chartsafe/internal/errors"
)

type stubAPI struct {
	replies []string
	err     error
	calls   [][]openai.ChatCompletionMessage
}

func (s *stubAPI) CreateChatCompletion(
	_ context.Context,
	req openai.ChatCompletionRequest,
) (openai.ChatCompletionResponse, error) {
	s.calls = append(s.calls, req.Messages)

	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}

	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: reply}},
		},
	}, nil
}

func newTestClient(api completionAPI) *Client {
	return &Client{
		api:    api,
		config: Config{Model: ModelGPT4oMini, MaxRetries: 1},
	}
}

func TestClient_ExtractChartRequest(t *testing.T) {
	api := &stubAPI{replies: []string{
		`{"table_name": "Account", "chart_type": "bar_chart", "x_axis": "Industry", "y_axis": "AnnualRevenue", "aggregate_y": "SUM"}`,
	}}
	c := newTestClient(api)

	req, err := c.ExtractChartRequest(context.Background(), "revenue by industry", "Table: Account")
	require.NoError(t, err)

	assert.Equal(t, "Account", req.TableName)
	assert.Equal(t, "bar_chart", req.ChartType)
	assert.Len(t, api.calls, 1)

	// The schema description reaches the prompt.
	prompt := api.calls[0][1].Content
	assert.Contains(t, prompt, "Table: Account")
	assert.Contains(t, prompt, "revenue by industry")
}

func TestClient_RetriesMalformedReply(t *testing.T) {
	api := &stubAPI{replies: []string{
		"Sorry, I can only help with charts.",
		`{"table_name": "Lead", "chart_type": "table"}`,
	}}
	c := newTestClient(api)

	req, err := c.ExtractChartRequest(context.Background(), "show leads", "Table: Lead")
	require.NoError(t, err)
	assert.Equal(t, "Lead", req.TableName)
	require.Len(t, api.calls, 2)

	// The retry quotes the malformed reply and asks for bare JSON.
	second := api.calls[1]
	assert.Equal(t, openai.ChatMessageRoleAssistant, second[len(second)-2].Role)
	assert.Contains(t, second[len(second)-1].Content, "ONLY the JSON object")
}

func TestClient_CorrectChartRequest(t *testing.T) {
	api := &stubAPI{replies: []string{
		`{"table_name": "Account", "chart_type": "scatter_plot", "x_axis": "NumberOfEmployees", "y_axis": "AnnualRevenue"}`,
	}}
	c := newTestClient(api)

	req, err := c.CorrectChartRequest(context.Background(),
		"employees vs revenue", "Table: Account",
		"Use only numeric columns for the axes. Numeric columns on Account: AnnualRevenue, NumberOfEmployees.")
	require.NoError(t, err)

	assert.Equal(t, "NumberOfEmployees", req.XAxis)
	require.Len(t, api.calls, 1)

	// The guidance rides along as an extra user message.
	msgs := api.calls[0]
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[2].Content, "Numeric columns on Account")
	assert.Contains(t, msgs[2].Content, "corrected JSON object")
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	api := &stubAPI{replies: []string{"nope", "still nope"}}
	c := newTestClient(api)

	_, err := c.ExtractChartRequest(context.Background(), "show leads", "Table: Lead")
	require.Error(t, err)
	assert.True(t, chartsafeerrors.IsType(err, chartsafeerrors.ErrTypeLLM))
	assert.Len(t, api.calls, 2)
}

func TestClient_ProviderError(t *testing.T) {
	api := &stubAPI{err: errors.New("429 too many requests")}
	c := newTestClient(api)

	_, err := c.ExtractChartRequest(context.Background(), "anything", "")
	require.Error(t, err)
	assert.True(t, chartsafeerrors.IsType(err, chartsafeerrors.ErrTypeLLM))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "test"})
	assert.Equal(t, ModelGPT4oMini, c.config.Model)
	assert.NotNil(t, c.api)
}
