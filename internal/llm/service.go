// Package llm extracts structured chart requests from natural-language
// messages. Nothing it produces is trusted: every extracted request goes
// through full validation before any SQL is synthesized.
package llm

import (
	"context"

	"github.com/vibecharting/chartsafe/internal/query"
)

// Service defines the interface for chart-request extraction
type Service interface {
	// ExtractChartRequest turns a natural-language message into an untrusted
	// chart request. schemaDescription is the PII-free catalog text that
	// anchors the model to real tables and columns.
	ExtractChartRequest(
		ctx context.Context,
		message string,
		schemaDescription string,
	) (*query.ChartRequest, error)
}

// Corrector is implemented by providers that can retry an extraction with
// validation guidance, such as the numeric columns a rejected scatter request
// should have used.
type Corrector interface {
	// CorrectChartRequest re-runs the extraction with guidance appended to
	// the prompt. The result is as untrusted as the first attempt.
	CorrectChartRequest(
		ctx context.Context,
		message string,
		schemaDescription string,
		guidance string,
	) (*query.ChartRequest, error)
}

// Config represents extraction provider configuration
type Config struct {
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	MaxRetries  int     `json:"max_retries"`
}

// Model constants for common models
const (
	ModelGPT4oMini = "gpt-4o-mini"
	ModelGPT4o     = "gpt-4o"
)
