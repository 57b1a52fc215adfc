package server

import (
	"context"
	"encoding/json"

	"mcp-file-gateway/internal/models"
	"mcp-file-gateway/pkg/errors"
	"mcp-file-gateway/pkg/tools"
)

// handleToolsList handles the tools/list method
func (s *MCPServer) handleToolsList(message *models.MCPMessage) *models.MCPMessage {
	definitions := s.dispatcher.Registry().List()

	mcpTools := make([]models.MCPTool, 0, len(definitions))
	for _, def := range definitions {
		mcpTools = append(mcpTools, models.MCPTool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}

	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      message.ID,
		Result:  models.MCPToolsListResult{Tools: mcpTools},
	}
}

// handleToolsCall handles the tools/call method. Only a malformed call
// envelope is a protocol error; every tool outcome, including an unknown
// tool name, is returned as a result.
func (s *MCPServer) handleToolsCall(ctx context.Context, message *models.MCPMessage) *models.MCPMessage {
	var params models.MCPToolsCallParams
	if message.Params != nil {
		paramsBytes, err := json.Marshal(message.Params)
		if err != nil {
			return s.createErrorResponse(message.ID, models.CodeInvalidParams, "Invalid parameters")
		}
		if err := json.Unmarshal(paramsBytes, &params); err != nil {
			return s.createErrorResponse(message.ID, models.CodeInvalidParams, "Invalid parameters format")
		}
	}

	if params.Name == "" {
		structuredErr := errors.NewMCPError(errors.ErrCodeInvalidParams,
			"Missing required parameter: name", nil)
		return s.createStructuredErrorResponse(message.ID, structuredErr)
	}

	result := s.dispatcher.Dispatch(ctx, tools.CallRequest{
		Name:      params.Name,
		Arguments: params.Arguments,
	})

	return &models.MCPMessage{
		JSONRPC: models.JSONRPCVersion,
		ID:      message.ID,
		Result:  toCallResult(result),
	}
}

func toCallResult(result *tools.Result) models.MCPToolsCallResult {
	content := make([]models.MCPToolContent, 0, len(result.Content))
	for _, c := range result.Content {
		content = append(content, models.MCPToolContent{Type: c.Type, Text: c.Text})
	}
	return models.MCPToolsCallResult{
		Content: content,
		IsError: result.IsError,
	}
}
