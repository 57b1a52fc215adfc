package server

import (
	"runtime"
	"time"

	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/errors"
)

// handlePerformanceMetrics handles requests for server performance metrics
func (s *MCPServer) handlePerformanceMetrics(message *models.MCPMessage) *models.MCPMessage {
	serverMetrics := map[string]interface{}{
		"server_info":    s.serverInfo,
		"initialized":    s.initialized.Load(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"tool_count":     s.dispatcher.Registry().Len(),
		"root_count":     s.roots.Len(),
		"logging_stats":  s.loggingManager.GetStats(),
		"loggers":        s.loggingManager.GetLoggerNames(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_stats":   getMemoryStats(),
		"timestamp":      time.Now().Format(time.RFC3339),
	}

	if s.monitor != nil {
		serverMetrics["watched_roots"] = s.monitor.Watched()
	}

	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      message.ID,
		Result:  serverMetrics,
	}
}

// createErrorResponse creates an MCP error response
func (s *MCPServer) createErrorResponse(id interface{}, code int, message string) *models.MCPMessage {
	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      id,
		Error: &models.MCPError{
			Code:    code,
			Message: message,
		},
	}
}

// createStructuredErrorResponse creates an MCP error response from a structured error
func (s *MCPServer) createStructuredErrorResponse(id interface{}, structuredErr *errors.StructuredError) *models.MCPMessage {
	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      id,
		Error:   structuredErr.ToMCPError(),
	}
}

// errorEnvelope is used where the request id is unknown; unlike MCPMessage
// it always serializes the id, as null.
type errorEnvelope struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      interface{}      `json:"id"`
	Error   *models.MCPError `json:"error"`
}

// parseErrorResponse answers input that is not valid JSON
func parseErrorResponse() *errorEnvelope {
	return &errorEnvelope{
		JSONRPC: models.JSONRPCVersion,
		ID:      nil,
		Error: &models.MCPError{
			Code:    models.CodeParseError,
			Message: "Parse error",
		},
	}
}

// getMemoryStats returns current memory statistics
func getMemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"alloc_bytes":       m.Alloc,
		"total_alloc_bytes": m.TotalAlloc,
		"sys_bytes":         m.Sys,
		"num_gc":            m.NumGC,
		"gc_cpu_fraction":   m.GCCPUFraction,
	}
}
