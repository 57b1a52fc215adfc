package tools

import (
	"context"
	"strings"

	"mcp-file-gateway/pkg/errors"
)

// Tool represents an executable function exposed via MCP
type Tool interface {
	// Name returns the unique identifier for the tool
	Name() string

	// Description returns a human-readable description
	Description() string

	// InputSchema returns JSON schema for tool parameters
	InputSchema() map[string]interface{}

	// Execute runs the tool with schema-validated arguments. Domain failures
	// are reported as an error Result; a returned error means the tool could
	// not produce a result at all.
	Execute(ctx context.Context, arguments map[string]interface{}) (*Result, error)
}

// ToolDefinition represents metadata about a tool
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// NewToolDefinition creates a ToolDefinition from a Tool
func NewToolDefinition(tool Tool) ToolDefinition {
	schema := tool.InputSchema()
	if schema == nil {
		schema = objectSchema(nil)
	}
	return ToolDefinition{
		Name:        tool.Name(),
		Description: tool.Description(),
		InputSchema: schema,
	}
}

// ContentTypeText is the only content kind tools produce
const ContentTypeText = "text"

// Content is one element of a tool result
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the uniform envelope returned for every call, successful or not
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`

	code string
}

// TextResult creates a successful single-line result
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: ContentTypeText, Text: text}}}
}

// ErrorResult describes err as a failed result. Structured errors keep
// their code; anything else is reported as an I/O failure.
func ErrorResult(err error) *Result {
	code := errors.CodeOf(err)
	text := err.Error()
	if se, ok := errors.AsStructured(err); ok {
		text = se.Text()
	}
	if code == "" {
		code = errors.ErrCodeIOFailure
	}

	return &Result{
		Content: []Content{{Type: ContentTypeText, Text: text}},
		IsError: true,
		code:    code,
	}
}

// Text joins all content lines
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

// Code returns the failure code, or "" for a successful result
func (r *Result) Code() string {
	return r.code
}

// objectSchema builds a JSON schema for an object with the given properties
func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	if properties == nil {
		properties = map[string]interface{}{}
	}
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func booleanProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

func nonNegativeIntegerProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": 0, "description": description}
}
