package errors

import (
	stderrors "errors"
	"fmt"
	"time"

	"mcp-file-gateway/internal/models"
)

// ErrorCategory represents different types of errors in the system
type ErrorCategory string

const (
	// Allow-list violations
	ErrorCategorySandbox ErrorCategory = "sandbox"
	// File system related errors
	ErrorCategoryFileSystem ErrorCategory = "filesystem"
	// MCP protocol related errors
	ErrorCategoryMCP ErrorCategory = "mcp"
	// Validation related errors
	ErrorCategoryValidation ErrorCategory = "validation"
	// System/internal errors
	ErrorCategorySystem ErrorCategory = "system"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// StructuredError represents a structured error with additional context.
// Message is the human-readable text returned to callers in tool results.
type StructuredError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Recoverable bool                   `json:"recoverable"`
	Cause       error                  `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (se *StructuredError) Error() string {
	if se.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", se.Category, se.Code, se.Message, se.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", se.Category, se.Code, se.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (se *StructuredError) Unwrap() error {
	return se.Cause
}

// Text returns the caller-facing description: the message, followed by
// details on a new line when present.
func (se *StructuredError) Text() string {
	if se.Details != "" {
		return se.Message + "\n" + se.Details
	}
	return se.Message
}

// ToMCPError converts a StructuredError to a JSON-RPC error object
func (se *StructuredError) ToMCPError() *models.MCPError {
	var mcpCode int
	switch se.Category {
	case ErrorCategoryValidation:
		mcpCode = models.CodeInvalidParams
	case ErrorCategoryMCP:
		switch se.Code {
		case ErrCodeParseError:
			mcpCode = models.CodeParseError
		case ErrCodeMethodNotFound:
			mcpCode = models.CodeMethodNotFound
		case ErrCodeInvalidParams:
			mcpCode = models.CodeInvalidParams
		default:
			mcpCode = models.CodeInvalidRequest
		}
	default:
		mcpCode = models.CodeInternalError
	}

	return &models.MCPError{
		Code:    mcpCode,
		Message: se.Message,
		Data: map[string]interface{}{
			"category":  se.Category,
			"code":      se.Code,
			"severity":  se.Severity,
			"timestamp": se.Timestamp,
			"context":   se.Context,
		},
	}
}

// NewStructuredError creates a new structured error
func NewStructuredError(category ErrorCategory, severity ErrorSeverity, code, message string) *StructuredError {
	return &StructuredError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		Recoverable: severity != ErrorSeverityCritical,
		Context:     make(map[string]interface{}),
	}
}

// WithDetails adds details to the error
func (se *StructuredError) WithDetails(details string) *StructuredError {
	se.Details = details
	return se
}

// WithContext adds context information to the error
func (se *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if se.Context == nil {
		se.Context = make(map[string]interface{})
	}
	se.Context[key] = value
	return se
}

// WithCause sets the underlying cause error
func (se *StructuredError) WithCause(err error) *StructuredError {
	se.Cause = err
	return se
}

// IsRecoverable returns whether the error is recoverable
func (se *StructuredError) IsRecoverable() bool {
	return se.Recoverable
}

// Predefined error constructors for common error scenarios

// NewSandboxError creates an allow-list violation error
func NewSandboxError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategorySandbox, ErrorSeverityHigh, code, message).WithCause(err)
}

// NewFileSystemError creates a file system related error
func NewFileSystemError(code, message string, err error) *StructuredError {
	severity := ErrorSeverityMedium
	switch code {
	case ErrCodeNotFound, ErrCodeNotEmpty, ErrCodeNotADirectory:
		severity = ErrorSeverityLow
	}

	return NewStructuredError(ErrorCategoryFileSystem, severity, code, message).WithCause(err)
}

// NewMCPError creates an MCP protocol related error
func NewMCPError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategoryMCP, ErrorSeverityMedium, code, message).WithCause(err)
}

// NewValidationError creates a validation related error
func NewValidationError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategoryValidation, ErrorSeverityLow, code, message).WithCause(err)
}

// NewSystemError creates a system/internal error
func NewSystemError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategorySystem, ErrorSeverityCritical, code, message).WithCause(err)
}

// AsStructured finds the first StructuredError in err's chain.
func AsStructured(err error) (*StructuredError, bool) {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf returns the code of the first StructuredError in err's chain, or ""
func CodeOf(err error) string {
	if se, ok := AsStructured(err); ok {
		return se.Code
	}
	return ""
}

// Common error codes
const (
	// Tool outcome codes
	ErrCodeAccessDenied    = "ACCESS_DENIED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeNotEmpty        = "NOT_EMPTY"
	ErrCodeNotADirectory   = "NOT_A_DIRECTORY"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeIOFailure       = "IO_FAILURE"
	ErrCodeUnknownTool     = "UNKNOWN_TOOL"

	// MCP protocol error codes
	ErrCodeParseError     = "PARSE_ERROR"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeMethodNotFound = "METHOD_NOT_FOUND"
	ErrCodeInvalidParams  = "INVALID_PARAMS"

	// System error codes
	ErrCodeInitializationFailed = "INITIALIZATION_FAILED"
	ErrCodeDuplicateTool        = "DUPLICATE_TOOL"
	ErrCodeUnexpectedPanic      = "UNEXPECTED_PANIC"
)
