package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mcp-file-gateway/pkg/errors"
	"mcp-file-gateway/pkg/logging"
)

// CallRequest is one tool invocation as delivered by a transport
type CallRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// Dispatcher routes calls to registered tools and always produces a
// well-formed Result. It is safe to share across concurrent calls.
type Dispatcher struct {
	registry *Registry
	executor *ToolExecutor
	logger   *logging.StructuredLogger
}

// NewDispatcher creates a dispatcher over registry
func NewDispatcher(registry *Registry, logger *logging.StructuredLogger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		executor: NewToolExecutor(logger),
		logger:   logger,
	}
}

// Registry returns the registry the dispatcher resolves tools from
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one call. It never returns nil and never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, req CallRequest) (result *Result) {
	callID := uuid.NewString()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = ErrorResult(errors.NewFileSystemError(errors.ErrCodeIOFailure,
				fmt.Sprintf("Tool %q failed: %v", req.Name, r), nil))
		}
		d.logger.LogToolCall(req.Name, callID, time.Since(start), result.Code())
	}()

	entry, err := d.registry.lookup(req.Name)
	if err != nil {
		return ErrorResult(err)
	}

	arguments := req.Arguments
	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	res, err := d.executor.Execute(ctx, entry, arguments)
	if err != nil {
		return ErrorResult(errors.NewFileSystemError(errors.ErrCodeIOFailure,
			fmt.Sprintf("Tool %q failed: %v", req.Name, failureText(err)), err))
	}
	if res == nil {
		return ErrorResult(errors.NewFileSystemError(errors.ErrCodeIOFailure,
			fmt.Sprintf("Tool %q failed: no result", req.Name), nil))
	}
	return res
}

func failureText(err error) string {
	if se, ok := errors.AsStructured(err); ok {
		return se.Text()
	}
	return err.Error()
}
