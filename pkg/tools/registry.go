package tools

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"mcp-file-gateway/pkg/errors"
	"mcp-file-gateway/pkg/logging"
)

// registeredTool pairs a tool with its definition and compiled input schema
type registeredTool struct {
	tool       Tool
	definition ToolDefinition
	schema     *gojsonschema.Schema
}

// Registry is the immutable catalog of callable tools. It is built once by
// NewRegistry and only read afterwards, so it needs no locking.
type Registry struct {
	ordered []*registeredTool
	byName  map[string]*registeredTool
}

// NewRegistry registers tools in order. A nil tool, an empty or duplicate
// name, or a schema that does not compile is a startup error.
func NewRegistry(logger *logging.StructuredLogger, tools ...Tool) (*Registry, error) {
	r := &Registry{
		ordered: make([]*registeredTool, 0, len(tools)),
		byName:  make(map[string]*registeredTool, len(tools)),
	}

	for i, tool := range tools {
		if tool == nil {
			return nil, errors.NewSystemError(errors.ErrCodeInitializationFailed,
				fmt.Sprintf("cannot register nil tool at position %d", i), nil)
		}

		name := tool.Name()
		if name == "" {
			return nil, errors.NewSystemError(errors.ErrCodeInitializationFailed,
				fmt.Sprintf("tool name cannot be empty (position %d)", i), nil)
		}

		if _, exists := r.byName[name]; exists {
			return nil, errors.NewSystemError(errors.ErrCodeDuplicateTool,
				fmt.Sprintf("tool %s already registered", name), nil)
		}

		definition := NewToolDefinition(tool)
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition.InputSchema))
		if err != nil {
			return nil, errors.NewSystemError(errors.ErrCodeInitializationFailed,
				fmt.Sprintf("tool %s has an invalid input schema", name), err)
		}

		if definition.Description == "" {
			logger.WithContext("tool", name).Warn("Tool registered without description")
		}

		entry := &registeredTool{tool: tool, definition: definition, schema: schema}
		r.ordered = append(r.ordered, entry)
		r.byName[name] = entry

		logger.WithContext("tool", name).Debug("Tool registered")
	}

	logger.WithContext("tool_count", len(r.ordered)).
		WithContext("tools", strings.Join(r.Names(), ",")).
		Info("Tool registry built")

	return r, nil
}

// List returns all tool definitions in registration order
func (r *Registry) List() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.ordered))
	for _, entry := range r.ordered {
		defs = append(defs, entry.definition)
	}
	return defs
}

// Names returns the tool names in registration order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, entry := range r.ordered {
		names = append(names, entry.definition.Name)
	}
	return names
}

// Len returns the number of registered tools
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Resolve returns the tool registered under name, or an UNKNOWN_TOOL error
func (r *Registry) Resolve(name string) (Tool, error) {
	entry, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return entry.tool, nil
}

func (r *Registry) lookup(name string) (*registeredTool, error) {
	entry, exists := r.byName[name]
	if !exists {
		return nil, errors.NewMCPError(errors.ErrCodeUnknownTool,
			fmt.Sprintf("Unknown tool: %q", name), nil).
			WithDetails("Available tools: " + strings.Join(r.Names(), ", ")).
			WithContext("tool", name)
	}
	return entry, nil
}
