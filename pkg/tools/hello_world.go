package tools

import (
	"context"
	"fmt"
)

// HelloWorldTool returns a greeting; it is a transport smoke test
type HelloWorldTool struct{}

func (t *HelloWorldTool) Name() string { return "hello_world" }

func (t *HelloWorldTool) Description() string { return "Returns a greeting" }

func (t *HelloWorldTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"name": stringProperty("Who to greet"),
	}, "name")
}

func (t *HelloWorldTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	return TextResult(fmt.Sprintf("Hello %s, MCP over HTTP is working!", stringArg(args, "name"))), nil
}
