package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"mcp-file-gateway/pkg/errors"
)

// Helper to create test logger with buffer
func newTestLogger() (*StructuredLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewStructuredLoggerWithWriter("test", &buf, slog.LevelDebug), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestStructuredLogger(t *testing.T) {
	t.Run("Initialization", func(t *testing.T) {
		logger := NewStructuredLogger("test-component")
		if logger.Component() != "test-component" || logger.context == nil {
			t.Error("Expected logger to be initialized correctly")
		}
	})

	t.Run("WithContext immutability", func(t *testing.T) {
		logger := NewNopLogger()
		newLogger := logger.WithContext("tool", "read_file").WithContext("count", 42)

		if len(logger.context) != 0 || len(newLogger.context) != 2 {
			t.Error("Expected WithContext to return new logger without modifying original")
		}
		if newLogger.context["tool"] != "read_file" {
			t.Errorf("Expected tool to be 'read_file', got %v", newLogger.context["tool"])
		}
	})

	t.Run("WithError", func(t *testing.T) {
		logger := NewNopLogger()
		testErr := errors.NewSandboxError(errors.ErrCodeAccessDenied, "Access denied", nil).
			WithContext("path", "/etc/passwd")

		newLogger := logger.WithError(testErr)
		if _, ok := newLogger.context["error"]; !ok {
			t.Error("Expected error to be added to context")
		}
		if newLogger.context["error_code"] != errors.ErrCodeAccessDenied {
			t.Errorf("Expected error_code for structured errors, got %v", newLogger.context["error_code"])
		}
		if newLogger.context["error_ctx_path"] != "/etc/passwd" {
			t.Error("Expected structured error context to be copied")
		}
		if logger.WithError(nil) != logger {
			t.Error("Expected WithError(nil) to return the same logger")
		}
	})

	t.Run("Log levels", func(t *testing.T) {
		logger, buf := newTestLogger()

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		entries := decodeLines(t, buf)
		if len(entries) != 4 {
			t.Fatalf("Expected 4 entries, got %d", len(entries))
		}
		if entries[0]["message"] != "debug message" || entries[0]["level"] != "DEBUG" {
			t.Errorf("Unexpected first entry: %v", entries[0])
		}
		if _, ok := entries[0]["timestamp"]; !ok {
			t.Error("Expected timestamp key in output")
		}
	})

	t.Run("Level filter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLoggerWithWriter("test", &buf, slog.LevelWarn)
		logger.Info("hidden")
		logger.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("Expected INFO message to be filtered")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("Expected WARN message in output")
		}
	})

	t.Run("Context in output", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithContext("call_id", 123).
			WithContext("tool", "list_files").
			Info("Tool call completed")

		entries := decodeLines(t, buf)
		if len(entries) != 1 {
			t.Fatalf("Expected 1 entry, got %d", len(entries))
		}
		if entries[0]["call_id"] != float64(123) {
			t.Error("Expected call_id in log output")
		}
		if entries[0]["tool"] != "list_files" {
			t.Error("Expected tool in log output")
		}
		if entries[0]["component"] != "test" {
			t.Error("Expected component in log output")
		}
	})

	t.Run("Sensitive data redaction", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.WithContext("password", "secret123").
			WithContext("token", "abc123xyz").
			Info("Login attempt")

		output := buf.String()
		if strings.Contains(output, "secret123") || strings.Contains(output, "abc123xyz") {
			t.Error("Expected sensitive values to be redacted")
		}
		if !strings.Contains(output, "[REDACTED]") {
			t.Error("Expected [REDACTED] in output")
		}
	})

	t.Run("LogToolCall", func(t *testing.T) {
		logger, buf := newTestLogger()
		logger.LogToolCall("read_file", "id-1", 0, "")
		logger.LogToolCall("read_file", "id-2", 0, errors.ErrCodeNotFound)

		entries := decodeLines(t, buf)
		if len(entries) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(entries))
		}
		if entries[0]["level"] != "INFO" || entries[1]["level"] != "WARN" {
			t.Errorf("Unexpected levels: %v / %v", entries[0]["level"], entries[1]["level"])
		}
		if entries[1]["error_code"] != errors.ErrCodeNotFound {
			t.Errorf("Expected error_code on failed call, got %v", entries[1]["error_code"])
		}
	})
}

func TestSanitization(t *testing.T) {
	t.Run("Sensitive keys", func(t *testing.T) {
		tests := []struct {
			key      string
			value    string
			expected string
		}{
			{"password", "secret", "[REDACTED]"},
			{"api_token", "xyz123", "[REDACTED]"},
			{"secret_key", "abc", "[REDACTED]"},
			{"path", "/srv/data/a.txt", "/srv/data/a.txt"},
			{"tool", "read_file", "read_file"},
		}

		for _, tt := range tests {
			result := sanitizeValue(tt.key, tt.value)
			if result != tt.expected {
				t.Errorf("sanitizeValue(%q, %q) = %v, want %v", tt.key, tt.value, result, tt.expected)
			}
		}
	})

	t.Run("Long alphanumeric strings", func(t *testing.T) {
		longToken := strings.Repeat("a", 40)
		result := sanitizeValue("data", longToken)
		if !strings.Contains(result.(string), "[MASKED:") {
			t.Error("Expected long alphanumeric string to be masked")
		}
	})

	t.Run("Long strings are truncated", func(t *testing.T) {
		long := strings.Repeat("ab ", 200)
		result := sanitizeValue("content", long).(string)
		if len(result) != maxLoggedValueLength+3 || !strings.HasSuffix(result, "...") {
			t.Errorf("Expected truncated value, got %d bytes", len(result))
		}
	})

	t.Run("Truncate keeps runes whole", func(t *testing.T) {
		if got := Truncate("héllo", 2); got != "h..." {
			t.Errorf("Truncate = %q, want %q", got, "h...")
		}
		if got := Truncate("short", 10); got != "short" {
			t.Errorf("Truncate = %q, want %q", got, "short")
		}
	})
}
