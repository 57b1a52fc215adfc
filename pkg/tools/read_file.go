package tools

import "context"

// ReadFileTool returns the full contents of a file inside the allowed roots
type ReadFileTool struct {
	fsTool
	maxBytes int64
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Reads a file and returns its contents as text"
}

func (t *ReadFileTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"path": stringProperty("Absolute or relative path of the file"),
	}, "path")
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := t.sandbox.Resolve(stringArg(args, "path"))
	if err != nil {
		return ErrorResult(err), nil
	}

	data, serr := t.readFile(path, "reading", t.maxBytes)
	if serr != nil {
		return ErrorResult(serr), nil
	}
	return TextResult(string(data)), nil
}
