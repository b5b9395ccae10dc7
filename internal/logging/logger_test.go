package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecharting/chartsafe/internal/config"
)

func newBufferLogger(level LogLevel, format string, buf *bytes.Buffer) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: buf,
		fields: make(map[string]interface{}),
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, ErrorLevel, parseLogLevel("error"))

	// Unknown levels fall back to info.
	assert.Equal(t, InfoLevel, parseLogLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(WarnLevel, "text", &buf)

	logger.Debug("schema snapshot refreshed")
	logger.Info("demo database seeded")
	assert.Empty(t, buf.String())

	logger.Warn("llm completion failed")
	logger.Error("chart query failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "WARN")
	assert.Contains(t, lines[0], "llm completion failed")
	assert.Contains(t, lines[1], "ERROR")
}

func TestJSONFormatCarriesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(InfoLevel, "json", &buf)

	logger.WithField("request_id", "req-42").
		WithFields(map[string]interface{}{"table": "Account", "rows": 9}).
		Info("chart request served")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "chart request served", entry.Message)
	assert.Equal(t, "req-42", entry.Fields["request_id"])
	assert.Equal(t, "Account", entry.Fields["table"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestTextFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(InfoLevel, "text", &buf)

	logger.WithField("tables", 3).Info("schema snapshot refreshed")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "schema snapshot refreshed")
	assert.Contains(t, line, "tables=3")
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newBufferLogger(InfoLevel, "json", &buf)

	child := parent.WithField("request_id", "req-1")
	require.NotSame(t, parent, child)

	parent.Info("refresh tick")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry.Fields, "request_id")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(InfoLevel, "json", &buf)

	logger.WithError(errors.New("connection refused")).Warn("schema refresh failed")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "connection refused", entry.Fields["error"])

	// A nil error adds nothing and returns the logger unchanged.
	assert.Same(t, logger, logger.WithError(nil))
}

func TestNewLoggerOutputs(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "pipe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log output")

	_, err = NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file path is required")

	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "chartsafe.log")

	logger, err := NewLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "text",
		Output: "file",
		File:   logPath,
	})
	require.NoError(t, err)

	logger.WithField("path", "demo.db").Info("demo database seeded")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "demo database seeded")
	assert.Contains(t, string(data), "path=demo.db")
}

func TestDebugLevelRecordsCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(DebugLevel, "json", &buf)
	logger.showCaller = true

	logger.Debug("llm reply failed to decode")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry.Caller, "logger_test.go")
}

func TestEnsureGlobal(t *testing.T) {
	// Even before configuration, the package-level helpers must be safe.
	logger := WithField("request_id", "req-9")
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Debug("suppressed at default level") })
}
