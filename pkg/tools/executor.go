package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"mcp-file-gateway/pkg/errors"
	"mcp-file-gateway/pkg/logging"
)

// maxLoggedArgumentLength bounds argument values written to the log
const maxLoggedArgumentLength = 100

// ToolExecutor validates arguments against a tool's compiled schema and runs
// it, converting a panic into an error. It holds no mutable state.
type ToolExecutor struct {
	logger *logging.StructuredLogger
}

// NewToolExecutor creates a new ToolExecutor
func NewToolExecutor(logger *logging.StructuredLogger) *ToolExecutor {
	return &ToolExecutor{logger: logger}
}

// ValidateArguments checks arguments against schema and reports every
// violation in one INVALID_ARGUMENT error
func (te *ToolExecutor) ValidateArguments(name string, schema *gojsonschema.Schema, arguments map[string]interface{}) error {
	if schema == nil {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(arguments))
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("Invalid arguments for %q: %v", name, err), err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("- %s: %s", desc.Field(), desc.Description()))
	}

	return errors.NewValidationError(errors.ErrCodeInvalidArgument,
		fmt.Sprintf("Invalid arguments for %q:", name), nil).
		WithDetails(strings.Join(violations, "\n")).
		WithContext("violations", len(violations))
}

// Execute runs tool after validating arguments. A validation failure is
// returned as an error Result; a tool error or panic is returned as err.
func (te *ToolExecutor) Execute(ctx context.Context, entry *registeredTool, arguments map[string]interface{}) (result *Result, err error) {
	name := entry.definition.Name

	if verr := te.ValidateArguments(name, entry.schema, arguments); verr != nil {
		te.logger.WithContext("tool", name).
			WithError(verr).
			Warn("Tool argument validation failed")
		return ErrorResult(verr), nil
	}

	logger := te.logger.WithContext("tool", name)
	for k, v := range sanitizeArguments(arguments) {
		logger = logger.WithContext(fmt.Sprintf("arg_%s", k), v)
	}
	logger.Debug("Executing tool")

	defer func() {
		if r := recover(); r != nil {
			err = errors.NewSystemError(errors.ErrCodeUnexpectedPanic, fmt.Sprintf("panic: %v", r), nil).
				WithContext("tool", name)
			te.logger.WithContext("tool", name).
				WithError(err).
				Error("Tool panicked")
			result = nil
		}
	}()

	return entry.tool.Execute(ctx, arguments)
}

// sanitizeArguments truncates large string values for logging
func sanitizeArguments(arguments map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(arguments))
	for key, value := range arguments {
		if strValue, ok := value.(string); ok && len(strValue) > maxLoggedArgumentLength {
			sanitized[key] = fmt.Sprintf("%s [%d chars]", logging.Truncate(strValue, maxLoggedArgumentLength), len(strValue))
		} else {
			sanitized[key] = value
		}
	}
	return sanitized
}
