package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// LoggingManager manages structured logging across the application.
// All loggers it hands out share one writer and one level.
type LoggingManager struct {
	loggers map[string]*StructuredLogger
	mutex   sync.RWMutex

	writer io.Writer
	level  *slog.LevelVar

	// Global context that gets added to all log entries
	globalContext LogContext

	stats LoggingStats
}

// LoggingStats tracks logging statistics
type LoggingStats struct {
	TotalMessages    int64            `json:"totalMessages"`
	MessagesByLevel  map[string]int64 `json:"messagesByLevel"`
	MessagesByLogger map[string]int64 `json:"messagesByLogger"`
	ErrorCount       int64            `json:"errorCount"`
	LastLogTime      time.Time        `json:"lastLogTime"`
}

// NewLoggingManager creates a logging manager writing to stderr
func NewLoggingManager() *LoggingManager {
	return NewLoggingManagerWithWriter(os.Stderr)
}

// NewLoggingManagerWithWriter creates a logging manager writing to w
func NewLoggingManagerWithWriter(w io.Writer) *LoggingManager {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	return &LoggingManager{
		loggers:       make(map[string]*StructuredLogger),
		writer:        w,
		level:         level,
		globalContext: make(LogContext),
		stats: LoggingStats{
			MessagesByLevel:  make(map[string]int64),
			MessagesByLogger: make(map[string]int64),
		},
	}
}

// GetLogger gets or creates a logger for a specific component
func (lm *LoggingManager) GetLogger(component string) *StructuredLogger {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger
	}

	logger := NewStructuredLoggerWithWriter(component, lm.writer, lm.level)
	for key, value := range lm.globalContext {
		logger = logger.WithContext(key, value)
	}

	lm.loggers[component] = logger
	return logger
}

// SetLogLevel sets the logging level for all loggers.
// Accepts any string and defaults to INFO for invalid levels.
func (lm *LoggingManager) SetLogLevel(level string) {
	lm.level.Set(parseLevel(level))
}

// GetLogLevel returns the current level name
func (lm *LoggingManager) GetLogLevel() LogLevel {
	return levelName(lm.level.Level())
}

// shouldLog checks if a message at the given level should be logged
func (lm *LoggingManager) shouldLog(level LogLevel) bool {
	return parseLevel(string(level)) >= lm.level.Level()
}

// SetGlobalContext sets global context that will be added to all log entries
func (lm *LoggingManager) SetGlobalContext(key string, value interface{}) {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.globalContext[key] = value

	for component, logger := range lm.loggers {
		lm.loggers[component] = logger.WithContext(key, value)
	}
}

// GetGlobalContext returns a copy of the global context
func (lm *LoggingManager) GetGlobalContext() LogContext {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	context := make(LogContext, len(lm.globalContext))
	for k, v := range lm.globalContext {
		context[k] = v
	}
	return context
}

// LogError logs an error with full context
func (lm *LoggingManager) LogError(component string, err error, message string, context map[string]interface{}) {
	logger := lm.GetLogger(component).WithError(err)

	for k, v := range context {
		logger = logger.WithContext(k, v)
	}

	logger.Error(message)
	lm.updateStats(component, LogLevelError)
}

// LogMCPRequest logs MCP protocol requests with timing
func (lm *LoggingManager) LogMCPRequest(method string, requestID interface{}, duration time.Duration, success bool, errorMsg string) {
	logger := lm.GetLogger("mcp_protocol")

	if !success && errorMsg != "" {
		logger = logger.WithContext("error_message", errorMsg)
	}

	logger.LogMCPMessage(method, requestID, duration, success)

	level := LogLevelInfo
	if !success {
		level = LogLevelWarn
	}
	lm.updateStats("mcp_protocol", level)
}

// LogSecurityEvent logs a security event under the "security" component
func (lm *LoggingManager) LogSecurityEvent(eventType string, details map[string]interface{}) {
	lm.GetLogger("security").LogSecurityEvent(eventType, details)
	lm.updateStats("security", LogLevelWarn)
}

// LogFileSystemEvent logs file system monitoring events
func (lm *LoggingManager) LogFileSystemEvent(eventType string, path string, processingTime time.Duration) {
	details := map[string]interface{}{
		"processing_time_ms": processingTime.Milliseconds(),
	}

	lm.GetLogger("root_monitor").LogFileSystemEvent(eventType, path, details)
	lm.updateStats("root_monitor", LogLevelInfo)
}

// LogStartupSequence logs application startup sequence
func (lm *LoggingManager) LogStartupSequence(phase string, details map[string]interface{}, duration time.Duration, success bool) {
	lm.GetLogger("startup").LogStartup(phase, withOutcome(details, duration, success))
	lm.updateStats("startup", outcomeLevel(success))
}

// LogShutdownSequence logs application shutdown sequence
func (lm *LoggingManager) LogShutdownSequence(phase string, details map[string]interface{}, duration time.Duration, success bool) {
	lm.GetLogger("shutdown").LogShutdown(phase, withOutcome(details, duration, success))
	lm.updateStats("shutdown", outcomeLevel(success))
}

func withOutcome(details map[string]interface{}, duration time.Duration, success bool) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+2)
	for k, v := range details {
		out[k] = v
	}
	out["duration_ms"] = duration.Milliseconds()
	out["success"] = success
	return out
}

func outcomeLevel(success bool) LogLevel {
	if success {
		return LogLevelInfo
	}
	return LogLevelError
}

// updateStats updates logging statistics for messages that pass the level filter
func (lm *LoggingManager) updateStats(component string, level LogLevel) {
	if !lm.shouldLog(level) {
		return
	}

	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.stats.TotalMessages++
	lm.stats.MessagesByLevel[string(level)]++
	lm.stats.MessagesByLogger[component]++
	lm.stats.LastLogTime = time.Now()

	if level == LogLevelError {
		lm.stats.ErrorCount++
	}
}

// GetStats returns current logging statistics
func (lm *LoggingManager) GetStats() LoggingStats {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	stats := LoggingStats{
		TotalMessages:    lm.stats.TotalMessages,
		ErrorCount:       lm.stats.ErrorCount,
		LastLogTime:      lm.stats.LastLogTime,
		MessagesByLevel:  make(map[string]int64, len(lm.stats.MessagesByLevel)),
		MessagesByLogger: make(map[string]int64, len(lm.stats.MessagesByLogger)),
	}

	for k, v := range lm.stats.MessagesByLevel {
		stats.MessagesByLevel[k] = v
	}
	for k, v := range lm.stats.MessagesByLogger {
		stats.MessagesByLogger[k] = v
	}

	return stats
}

// GetLoggerNames returns the names of all registered loggers
func (lm *LoggingManager) GetLoggerNames() []string {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	names := make([]string, 0, len(lm.loggers))
	for name := range lm.loggers {
		names = append(names, name)
	}
	return names
}

// ResetStats resets logging statistics
func (lm *LoggingManager) ResetStats() {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.stats = LoggingStats{
		MessagesByLevel:  make(map[string]int64),
		MessagesByLogger: make(map[string]int64),
	}
}
