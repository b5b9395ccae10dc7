package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrTypeValidation, "test error message")

	assert.Equal(t, ErrTypeValidation, err.Type)
	assert.Equal(t, "test error message", err.Message)
	assert.NoError(t, err.Cause)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrTypeDatabase, "failed to connect to %s", "database")

	assert.Equal(t, ErrTypeDatabase, err.Type)
	assert.Equal(t, "failed to connect to database", err.Message)
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, ErrTypeNetwork, "network operation failed")

	assert.Equal(t, ErrTypeNetwork, wrappedErr.Type)
	assert.Equal(t, "network operation failed", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("connection refused")
	wrappedErr := Wrapf(
		originalErr,
		ErrTypeNetwork,
		"failed to connect to %s:%d",
		"localhost",
		8080,
	)

	assert.Equal(t, ErrTypeNetwork, wrappedErr.Type)
	assert.Equal(t, "failed to connect to localhost:8080", wrappedErr.Message)
	assert.Equal(t, originalErr, wrappedErr.Cause)
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "error without cause",
			err: &Error{
				Type:    ErrTypeValidation,
				Message: "invalid input",
			},
			expected: "validation: invalid input",
		},
		{
			name: "error with cause",
			err: &Error{
				Type:    ErrTypeDatabase,
				Message: "query failed",
				Cause:   errors.New("connection timeout"),
			},
			expected: "database: query failed (caused by: connection timeout)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(originalErr, ErrTypeNetwork, "wrapped error")

	assert.Equal(t, originalErr, wrappedErr.Unwrap())
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrTypeAuth, "authentication failed")
	err = err.WithSuggestion("Set CHARTSAFE_LLM_API_KEY")
	err = err.WithSuggestion("Check the configured base URL")

	assert.Len(t, err.Suggestions, 2)
	assert.Contains(t, err.Suggestions, "Set CHARTSAFE_LLM_API_KEY")
	assert.Contains(t, err.Suggestions, "Check the configured base URL")
}

func TestIsType(t *testing.T) {
	structErr := New(ErrTypeValidation, "validation error")
	regularErr := errors.New("regular error")

	assert.True(t, IsType(structErr, ErrTypeValidation))
	assert.False(t, IsType(structErr, ErrTypeDatabase))
	assert.False(t, IsType(regularErr, ErrTypeValidation))
}

func TestGetType(t *testing.T) {
	structErr := New(ErrTypeLLM, "provider error")
	regularErr := errors.New("regular error")

	assert.Equal(t, ErrTypeLLM, GetType(structErr))
	assert.Equal(t, ErrTypeInternal, GetType(regularErr))
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("invalid value", "log_level")

	assert.Equal(t, ErrTypeConfig, err.Type)
	assert.Contains(t, err.Message, "invalid value")
	assert.Contains(t, err.Message, "log_level")
	assert.Contains(t, err.Suggestions, "Check your configuration file syntax")
	assert.Contains(t, err.Suggestions, "Run with --help to see valid configuration options")
}

func TestNewConfigErrorEmptyField(t *testing.T) {
	err := NewConfigError("failed to load", "")

	assert.Equal(t, ErrTypeConfig, err.Type)
	assert.Equal(t, "failed to load", err.Message)
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType  ErrorType
		expected string
	}{
		{ErrTypeLLM, "llm"},
		{ErrTypeDatabase, "database"},
		{ErrTypeValidation, "validation"},
		{ErrTypeRateLimit, "rate_limit"},
		{ErrTypeNotFound, "not_found"},
		{ErrTypeConfig, "config"},
		{ErrTypeNetwork, "network"},
		{ErrTypeAuth, "auth"},
		{ErrTypeInternal, "internal"},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestNewDatabaseError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewDatabaseError(cause, "execute chart query")

	assert.Equal(t, ErrTypeDatabase, err.Type)
	assert.Contains(t, err.Message, "execute chart query")
	assert.NotContains(t, err.Message, "dial tcp", "cause stays out of the message")
	assert.Equal(t, cause, err.Unwrap())
	assert.NotEmpty(t, err.Suggestions)
}

func TestNewLLMError(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := NewLLMError(cause, "openai")

	assert.Equal(t, ErrTypeLLM, err.Type)
	assert.Contains(t, err.Message, "openai")
	assert.Equal(t, cause, err.Unwrap())
}
