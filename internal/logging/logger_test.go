package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    LogLevel
		expected slog.Level
	}{
		{name: "Debug level", level: LevelDebug, expected: slog.LevelDebug},
		{name: "Info level", level: LevelInfo, expected: slog.LevelInfo},
		{name: "Warn level", level: LevelWarn, expected: slog.LevelWarn},
		{name: "Error level", level: LevelError, expected: slog.LevelError},
		{name: "Upper case accepted", level: LogLevel("WARN"), expected: slog.LevelWarn},
		{name: "Invalid level defaults to Info", level: LogLevel("invalid"), expected: slog.LevelInfo},
		{name: "Empty level defaults to Info", level: LogLevel(""), expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}

func TestLoggingFunctions(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelDebug, FormatText)

	tests := []struct {
		name    string
		logFunc func(string, ...any)
		level   string
		message string
	}{
		{name: "Debug logging", logFunc: Debug, level: "DEBUG", message: "debug message"},
		{name: "Info logging", logFunc: Info, level: "INFO", message: "info message"},
		{name: "Warn logging", logFunc: Warn, level: "WARN", message: "warn message"},
		{name: "Error logging", logFunc: Error, level: "ERROR", message: "error message"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			tc.logFunc(tc.message, "key", "value")

			output := buf.String()
			assert.Contains(t, output, "level="+tc.level)
			assert.Contains(t, output, tc.message)
			assert.Contains(t, output, "key=value")
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelWarn, FormatText)

	Info("should be dropped")
	Debug("should be dropped too")
	assert.Empty(t, buf.String())

	Warn("kept")
	assert.True(t, strings.Contains(buf.String(), "kept"))
}

func TestJSONFormat(t *testing.T) {
	originalLogger := defaultLogger
	defer func() {
		defaultLogger = originalLogger
		slog.SetDefault(originalLogger)
	}()

	var buf bytes.Buffer
	SetupLogger(&buf, LevelInfo, FormatJSON)
	Error("delivery failed", "message_id", "<abc@example.com>")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "delivery failed", record["msg"])
	assert.Equal(t, "<abc@example.com>", record["message_id"])
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, LevelInfo, levelFromEnv())

	t.Setenv("LOG_LEVEL", "DEBUG")
	assert.Equal(t, LevelDebug, levelFromEnv())
}

func TestGetLogger(t *testing.T) {
	require.NotNil(t, GetLogger())
}

func TestMaskSensitive(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty string", input: "", expected: "<not set>"},
		{name: "Short string", input: "abc", expected: "<set>"},
		{name: "Exactly 4 characters", input: "abcd", expected: "<set>"},
		{name: "Password-like string", input: "hunter2hunter2", expected: "hunt...***"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MaskSensitive(tc.input))
		})
	}
}
