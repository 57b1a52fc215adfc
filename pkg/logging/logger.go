package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"mcp-file-gateway/pkg/errors"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// maxLoggedValueLength bounds string values written to the log
const maxLoggedValueLength = 200

// LogContext represents contextual information for log entries
type LogContext map[string]interface{}

// StructuredLogger provides structured logging capabilities.
// Loggers are immutable; WithContext and WithError return copies.
type StructuredLogger struct {
	logger    *slog.Logger
	component string
	context   LogContext
}

// NewStructuredLogger creates a logger writing JSON to stderr at DEBUG level.
// stdout is reserved for protocol traffic.
func NewStructuredLogger(component string) *StructuredLogger {
	return NewStructuredLoggerWithWriter(component, os.Stderr, slog.LevelDebug)
}

// NewStructuredLoggerWithWriter creates a logger writing JSON to w, filtered by level
func NewStructuredLoggerWithWriter(component string, w io.Writer, level slog.Leveler) *StructuredLogger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano)),
				}
			case slog.LevelKey:
				return slog.Attr{Key: "level", Value: a.Value}
			case slog.MessageKey:
				return slog.Attr{Key: "message", Value: a.Value}
			}
			return a
		},
	}

	return &StructuredLogger{
		logger:    slog.New(slog.NewJSONHandler(w, opts)),
		component: component,
		context:   make(LogContext),
	}
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *StructuredLogger {
	return NewStructuredLoggerWithWriter("nop", io.Discard, slog.LevelError+1)
}

// Component returns the component name attached to every entry
func (sl *StructuredLogger) Component() string {
	return sl.component
}

// WithContext adds context to the logger (returns a new logger instance)
func (sl *StructuredLogger) WithContext(key string, value interface{}) *StructuredLogger {
	newLogger := &StructuredLogger{
		logger:    sl.logger,
		component: sl.component,
		context:   make(LogContext, len(sl.context)+1),
	}

	for k, v := range sl.context {
		newLogger.context[k] = v
	}

	newLogger.context[key] = value
	return newLogger
}

// WithError adds error information to the logger context
func (sl *StructuredLogger) WithError(err error) *StructuredLogger {
	if err == nil {
		return sl
	}

	newLogger := sl.WithContext("error", err.Error())

	if structuredErr, ok := errors.AsStructured(err); ok {
		newLogger = newLogger.
			WithContext("error_category", structuredErr.Category).
			WithContext("error_code", structuredErr.Code).
			WithContext("error_severity", structuredErr.Severity).
			WithContext("error_recoverable", structuredErr.IsRecoverable())

		for k, v := range structuredErr.Context {
			newLogger = newLogger.WithContext(fmt.Sprintf("error_ctx_%s", k), v)
		}
	}

	return newLogger
}

// buildLogAttributes creates slog attributes from context, sanitizing values
func (sl *StructuredLogger) buildLogAttributes() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(sl.context)+1)
	attrs = append(attrs, slog.String("component", sl.component))

	for key, value := range sl.context {
		attrs = append(attrs, slog.Any(key, sanitizeValue(key, value)))
	}

	return attrs
}

func (sl *StructuredLogger) log(level slog.Level, message string) {
	ctx := context.Background()
	if !sl.logger.Enabled(ctx, level) {
		return
	}
	sl.logger.LogAttrs(ctx, level, message, sl.buildLogAttributes()...)
}

// Debug logs a debug message
func (sl *StructuredLogger) Debug(message string) {
	sl.log(slog.LevelDebug, message)
}

// Info logs an info message
func (sl *StructuredLogger) Info(message string) {
	sl.log(slog.LevelInfo, message)
}

// Warn logs a warning message
func (sl *StructuredLogger) Warn(message string) {
	sl.log(slog.LevelWarn, message)
}

// Error logs an error message
func (sl *StructuredLogger) Error(message string) {
	sl.log(slog.LevelError, message)
}

// Log logs a message at the given level
func (sl *StructuredLogger) Log(level LogLevel, message string) {
	sl.log(parseLevel(string(level)), message)
}

// LogMCPMessage logs an MCP protocol message with timing information
func (sl *StructuredLogger) LogMCPMessage(method string, requestID interface{}, duration time.Duration, success bool) {
	logger := sl.WithContext("mcp_method", method).
		WithContext("request_id", requestID).
		WithContext("duration_ms", duration.Milliseconds()).
		WithContext("success", success)

	if success {
		logger.Info("MCP message processed successfully")
	} else {
		logger.Warn("MCP message processing failed")
	}
}

// LogToolCall logs the outcome of a single tool dispatch.
// code is the failure code and is empty on success.
func (sl *StructuredLogger) LogToolCall(tool, callID string, duration time.Duration, code string) {
	logger := sl.WithContext("tool", tool).
		WithContext("call_id", callID).
		WithContext("duration_ms", duration.Milliseconds())

	if code == "" {
		logger.Info("Tool call completed")
		return
	}
	logger.WithContext("error_code", code).Warn("Tool call returned an error result")
}

// LogStartup logs application startup events
func (sl *StructuredLogger) LogStartup(event string, details map[string]interface{}) {
	logger := sl.WithContext("startup_event", event)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Application startup event")
}

// LogShutdown logs application shutdown events
func (sl *StructuredLogger) LogShutdown(event string, details map[string]interface{}) {
	logger := sl.WithContext("shutdown_event", event)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Info("Application shutdown event")
}

// LogFileSystemEvent logs file system monitoring events
func (sl *StructuredLogger) LogFileSystemEvent(eventType string, path string, details map[string]interface{}) {
	logger := sl.WithContext("fs_event_type", eventType).
		WithContext("fs_path", path)

	for k, v := range details {
		logger = logger.WithContext(k, v)
	}

	logger.Info("File system event detected")
}

// LogSecurityEvent logs security-related events such as sandbox denials
func (sl *StructuredLogger) LogSecurityEvent(eventType string, details map[string]interface{}) {
	logger := sl.WithContext("security_event", eventType)
	for k, v := range details {
		logger = logger.WithContext(k, v)
	}
	logger.Warn("Security event detected")
}

var sensitiveKeys = []string{
	"password", "token", "secret", "key", "auth", "credential",
	"private", "confidential", "sensitive",
}

// sanitizeValue masks values whose key looks sensitive, masks token-like
// strings and truncates long strings
func sanitizeValue(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, sensitiveKey := range sensitiveKeys {
		if strings.Contains(keyLower, sensitiveKey) {
			return "[REDACTED]"
		}
	}

	str, ok := value.(string)
	if !ok {
		return value
	}
	return sanitizeStringValue(str)
}

// sanitizeStringValue sanitizes string values to remove potential sensitive data
func sanitizeStringValue(value string) interface{} {
	if len(value) > 20 && isAlphanumeric(value) {
		return fmt.Sprintf("[MASKED:%d_chars]", len(value))
	}
	return Truncate(value, maxLoggedValueLength)
}

// Truncate shortens s to at most max bytes without splitting a rune,
// marking the cut with "...".
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// isAlphanumeric checks if a string contains only alphanumeric characters
func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// parseLevel converts a level name to a slog level; unknown names map to INFO
func parseLevel(level string) slog.Level {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(level))) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// levelName is the inverse of parseLevel
func levelName(level slog.Level) LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return LogLevelDebug
	case level <= slog.LevelInfo:
		return LogLevelInfo
	case level <= slog.LevelWarn:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

// IsValidLevel reports whether level names a known log level
func IsValidLevel(level string) bool {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(level))) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}
