package server

import (
	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/config"
)

// handleInitialize handles the MCP initialize method
func (s *MCPServer) handleInitialize(message *models.MCPMessage) *models.MCPMessage {
	result := models.MCPInitializeResult{
		ProtocolVersion: config.ProtocolVersion,
		Capabilities:    s.capabilities,
		ServerInfo:      s.serverInfo,
	}

	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      message.ID,
		Result:  result,
	}
}

// handleNotification handles messages that carry no id. None of them
// produce a response.
func (s *MCPServer) handleNotification(message *models.MCPMessage) {
	switch message.Method {
	case "notifications/initialized":
		s.initialized.Store(true)
		s.logger.Info("MCP client initialized")
	default:
		s.logger.WithContext("method", message.Method).Debug("Ignoring notification")
	}
}

// handlePing answers liveness checks with an empty result
func (s *MCPServer) handlePing(message *models.MCPMessage) *models.MCPMessage {
	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      message.ID,
		Result:  map[string]interface{}{},
	}
}
