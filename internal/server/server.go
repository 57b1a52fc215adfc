package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/config"
	"mcp-file-gateway/pkg/logging"
	"mcp-file-gateway/pkg/monitor"
	"mcp-file-gateway/pkg/sandbox"
	"mcp-file-gateway/pkg/tools"
)

// maxMessageSize bounds a single stdio line
const maxMessageSize = 64 << 20

// MCPServer answers MCP requests by routing tool calls through a shared
// dispatcher. One instance serves every transport and every request.
type MCPServer struct {
	serverInfo   models.MCPServerInfo
	capabilities models.MCPCapabilities
	initialized  atomic.Bool
	startedAt    time.Time

	dispatcher *tools.Dispatcher
	roots      *sandbox.AllowedRoots

	// Root monitoring, nil when disabled or unavailable
	monitorEnabled bool
	monitor        *monitor.RootMonitor

	loggingManager *logging.LoggingManager
	logger         *logging.StructuredLogger
}

// NewMCPServer creates a server over dispatcher. Roots are only used for
// monitoring and metrics; access checks live in the tools.
func NewMCPServer(dispatcher *tools.Dispatcher, roots *sandbox.AllowedRoots, loggingManager *logging.LoggingManager) *MCPServer {
	return newMCPServerWithOptions(dispatcher, roots, loggingManager, true)
}

// newMCPServerWithOptions lets tests run without a file system watcher
func newMCPServerWithOptions(dispatcher *tools.Dispatcher, roots *sandbox.AllowedRoots, loggingManager *logging.LoggingManager, enableMonitor bool) *MCPServer {
	if loggingManager == nil {
		loggingManager = logging.NewLoggingManager()
	}
	if roots == nil {
		roots, _ = sandbox.NewAllowedRoots(nil)
	}

	return &MCPServer{
		serverInfo: models.MCPServerInfo{
			Name:    config.ServerName,
			Version: config.ServerVersion,
		},
		capabilities: models.MCPCapabilities{
			Tools: &models.MCPToolCapabilities{ListChanged: false},
		},
		startedAt:      time.Now(),
		dispatcher:     dispatcher,
		roots:          roots,
		monitorEnabled: enableMonitor,
		loggingManager: loggingManager,
		logger:         loggingManager.GetLogger("server"),
	}
}

// Start prepares background components. It does not block; transports are
// run separately with ServeStdio or an HTTPTransport.
func (s *MCPServer) Start(ctx context.Context) error {
	startTime := time.Now()

	s.loggingManager.LogStartupSequence("server_start", map[string]interface{}{
		"tools": s.dispatcher.Registry().Names(),
		"roots": s.roots.List(),
	}, 0, true)

	if s.roots.Len() == 0 {
		s.logger.Warn("No allowed directories configured; every path will be denied")
	}

	if s.monitorEnabled {
		monitorStart := time.Now()
		if err := s.startMonitor(); err != nil {
			// The gateway keeps serving without root monitoring
			s.loggingManager.LogStartupSequence("root_monitor", map[string]interface{}{
				"error": err.Error(),
			}, time.Since(monitorStart), false)
		} else {
			s.loggingManager.LogStartupSequence("root_monitor", map[string]interface{}{
				"watched": s.monitor.Watched(),
			}, time.Since(monitorStart), true)
		}
	}

	s.loggingManager.LogStartupSequence("server_ready", map[string]interface{}{
		"total_startup_time_ms": time.Since(startTime).Milliseconds(),
	}, time.Since(startTime), true)

	return nil
}

func (s *MCPServer) startMonitor() error {
	if s.roots.Len() == 0 {
		return fmt.Errorf("no allowed directories to watch")
	}

	rootMonitor, err := monitor.NewRootMonitor(s.loggingManager.GetLogger("root_monitor"), 0)
	if err != nil {
		return err
	}

	rootMonitor.OnRootEvent(s.onRootEvent)
	if err := rootMonitor.Start(s.roots.List()); err != nil {
		_ = rootMonitor.Stop()
		return err
	}

	s.monitor = rootMonitor
	return nil
}

// onRootEvent reports an allowed root disappearing from under the gateway
func (s *MCPServer) onRootEvent(event models.RootEvent) {
	s.loggingManager.LogFileSystemEvent(event.Type, event.Root, time.Since(event.Timestamp))
	s.loggingManager.LogSecurityEvent("allowed_root_"+event.Type, map[string]interface{}{
		"root":      event.Root,
		"timestamp": event.Timestamp.Format(time.RFC3339),
	})
}

// Shutdown stops background components
func (s *MCPServer) Shutdown(ctx context.Context) error {
	shutdownStart := time.Now()

	s.loggingManager.LogShutdownSequence("shutdown_start", map[string]interface{}{}, 0, true)

	if s.monitor != nil {
		monitorStop := time.Now()
		if err := s.monitor.Stop(); err != nil {
			s.loggingManager.LogShutdownSequence("monitor_stop", map[string]interface{}{
				"error": err.Error(),
			}, time.Since(monitorStop), false)
		} else {
			s.loggingManager.LogShutdownSequence("monitor_stop", map[string]interface{}{},
				time.Since(monitorStop), true)
		}
	}

	s.loggingManager.LogShutdownSequence("shutdown_complete", map[string]interface{}{
		"total_shutdown_time_ms": time.Since(shutdownStart).Milliseconds(),
	}, time.Since(shutdownStart), true)

	return nil
}

// ServeStdio runs the stdio transport: one JSON-RPC message per line on
// reader, one response per line on writer. It returns nil on EOF and the
// context error on cancellation.
func (s *MCPServer) ServeStdio(ctx context.Context, reader io.Reader, writer io.Writer) error {
	return s.processMessages(ctx, reader, writer)
}

type scannedLine struct {
	data []byte
	err  error
}

// processMessages handles the JSON-RPC message processing loop
func (s *MCPServer) processMessages(ctx context.Context, reader io.Reader, writer io.Writer) error {
	lines := make(chan scannedLine)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
		for scanner.Scan() {
			data := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- scannedLine{data: data}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- scannedLine{err: err}:
			case <-done:
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				s.logger.Debug("Input closed, stopping stdio transport")
				return nil
			}
			if line.err != nil {
				s.logger.WithError(line.err).Error("Error reading message")
				return line.err
			}
			if len(bytes.TrimSpace(line.data)) == 0 {
				continue
			}

			response := s.HandleRaw(ctx, line.data)
			if response == nil {
				continue
			}

			encoded, err := json.Marshal(response)
			if err != nil {
				s.logger.WithError(err).Error("Error encoding response")
				continue
			}
			if _, err := writer.Write(append(encoded, '\n')); err != nil {
				s.logger.WithError(err).Error("Error writing response")
				return err
			}
		}
	}
}

// HandleRaw decodes one JSON-RPC message and handles it. It returns nil
// when no response is due; a decode failure yields a parse error envelope.
func (s *MCPServer) HandleRaw(ctx context.Context, data []byte) interface{} {
	var message models.MCPMessage
	if err := json.Unmarshal(data, &message); err != nil {
		s.logger.WithError(err).
			WithContext("input", logging.Truncate(string(data), 100)).
			Warn("Error decoding message")
		return parseErrorResponse()
	}

	response := s.handleMessage(ctx, &message)
	if response == nil {
		return nil
	}
	return response
}

// HandleMessage processes individual MCP messages (exported for testing)
func (s *MCPServer) HandleMessage(ctx context.Context, message *models.MCPMessage) *models.MCPMessage {
	return s.handleMessage(ctx, message)
}

// handleMessage processes individual MCP messages
func (s *MCPServer) handleMessage(ctx context.Context, message *models.MCPMessage) *models.MCPMessage {
	startTime := time.Now()
	var response *models.MCPMessage
	var success = true
	var errorMsg string

	defer func() {
		duration := time.Since(startTime)
		s.loggingManager.LogMCPRequest(message.Method, message.ID, duration, success, errorMsg)
	}()

	if message.JSONRPC != models.JSONRPCVersion || message.Method == "" {
		success = false
		errorMsg = "Invalid request"
		if message.IsNotification() {
			return nil
		}
		return s.createErrorResponse(message.ID, models.CodeInvalidRequest, "Invalid request")
	}

	if message.IsNotification() {
		s.handleNotification(message)
		return nil
	}

	switch message.Method {
	case "initialize":
		response = s.handleInitialize(message)
	case "ping":
		response = s.handlePing(message)
	case "tools/list":
		response = s.handleToolsList(message)
	case "tools/call":
		response = s.handleToolsCall(ctx, message)
	case "server/performance":
		response = s.handlePerformanceMetrics(message)
	default:
		response = s.createErrorResponse(message.ID, models.CodeMethodNotFound, "Method not found")
	}

	if response != nil && response.Error != nil {
		success = false
		errorMsg = response.Error.Message
	}

	return response
}

// IsInitialized reports whether the client has sent notifications/initialized
func (s *MCPServer) IsInitialized() bool {
	return s.initialized.Load()
}
