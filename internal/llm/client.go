package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vibecharting/chartsafe/internal/errors"
	"github.com/vibecharting/chartsafe/internal/logging"
	"github.com/vibecharting/chartsafe/internal/query"
)

// completionAPI is the slice of the OpenAI client the extraction client
// uses; tests substitute a stub.
type completionAPI interface {
	CreateChatCompletion(
		ctx context.Context,
		request openai.ChatCompletionRequest,
	) (openai.ChatCompletionResponse, error)
}

// Client extracts chart requests through an OpenAI-compatible chat API.
type Client struct {
	api    completionAPI
	config Config
}

// NewClient creates an extraction client. BaseURL, when set, points the
// client at any OpenAI-compatible endpoint.
func NewClient(config Config) *Client {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	if config.Model == "" {
		config.Model = ModelGPT4oMini
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

const systemPrompt = `You are a data visualization assistant. Given a database schema and a user question, respond with ONLY a JSON object describing the chart to build. Use exactly these keys: table_name, chart_type, x_axis, y_axis, z_axis, color, size, aggregate_y, title, limit. Omit keys that do not apply. chart_type must be one of: bar_chart, line_chart, pie_chart, donut_chart, scatter_plot, histogram, 3d_scatter_plot, heatmap, bubble_chart, table, box_plot, area_chart. aggregate_y must be one of: SUM, AVG, COUNT, MIN, MAX. Only reference tables and columns that appear in the schema.`

// ExtractChartRequest asks the model for a chart request and decodes the
// reply. A reply that fails to decode is retried once with a fix-up prompt
// that quotes the malformed output.
func (c *Client) ExtractChartRequest(
	ctx context.Context,
	message string,
	schemaDescription string,
) (*query.ChartRequest, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildExtractionPrompt(message, schemaDescription)},
	}

	return c.extract(ctx, messages)
}

// CorrectChartRequest retries the extraction with validation guidance from a
// rejected attempt appended to the prompt.
func (c *Client) CorrectChartRequest(
	ctx context.Context,
	message string,
	schemaDescription string,
	guidance string,
) (*query.ChartRequest, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: buildExtractionPrompt(message, schemaDescription)},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: "The previous chart request was rejected. " + guidance + " Reply with ONLY the corrected JSON object.",
		},
	}

	return c.extract(ctx, messages)
}

func (c *Client) extract(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
) (*query.ChartRequest, error) {
	retries := c.config.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		content, err := c.complete(ctx, messages)
		if err != nil {
			lastErr = err
			logging.WithError(err).WithField("attempt", attempt).Warn("llm completion failed")

			continue
		}

		req, err := decodeChartRequest(content)
		if err == nil {
			return req, nil
		}

		lastErr = err
		logging.WithError(err).WithField("attempt", attempt).Debug("llm reply failed to decode")

		// Quote the malformed reply back so the model can correct itself.
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleUser,
				Content: "That response was not a valid JSON chart request. " +
					"Reply again with ONLY the JSON object, no prose and no code fences.",
			},
		)
	}

	return nil, errors.NewLLMError(lastErr, "openai")
}

func (c *Client) complete(
	ctx context.Context,
	messages []openai.ChatCompletionMessage,
) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: float32(c.config.Temperature),
		MaxTokens:   c.config.MaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// decodeChartRequest recovers a chart request from model output that may be
// wrapped in prose or code fences.
func decodeChartRequest(content string) (*query.ChartRequest, error) {
	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	return query.ParseRequest([]byte(raw))
}

func buildExtractionPrompt(message, schemaDescription string) string {
	var b strings.Builder

	b.WriteString("Database schema:\n")
	b.WriteString(schemaDescription)
	b.WriteString("\nUser question: ")
	b.WriteString(message)
	b.WriteString("\n\nJSON chart request:")

	return b.String()
}
