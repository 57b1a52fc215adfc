package tools

import (
	"context"
	"fmt"
	"time"

	"mcp-file-gateway/pkg/errors"
)

const timeLayout = "Monday, 02 January 2006 15:04:05 MST"

// GetTimeTool reports the current date and time in a timezone
type GetTimeTool struct {
	now func() time.Time
}

func (t *GetTimeTool) Name() string { return "get_time" }

func (t *GetTimeTool) Description() string {
	return "Returns the current date and time"
}

func (t *GetTimeTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"timezone": stringProperty("IANA timezone such as 'Europe/Berlin' (optional, default: UTC)"),
	})
}

func (t *GetTimeTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	tz := optionalStringArg(args, "timezone", "UTC")

	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		return ErrorResult(errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("Invalid timezone: %s", tz), err)), nil
	}

	return TextResult(fmt.Sprintf("%s (%s)", t.now().In(loc).Format(timeLayout), tz)), nil
}
