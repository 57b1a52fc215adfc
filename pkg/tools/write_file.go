package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"mcp-file-gateway/pkg/errors"
)

// WriteFileTool creates, overwrites or appends to a file, creating parent
// directories as needed
type WriteFileTool struct {
	fsTool
}

func (t *WriteFileTool) Name() string { return "write_file" }

func (t *WriteFileTool) Description() string {
	return "Writes content to a file, creating or overwriting it"
}

func (t *WriteFileTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"path":    stringProperty("Absolute or relative path of the target file"),
		"content": stringProperty("Content to write"),
		"append":  booleanProperty("Append to an existing file instead of overwriting it (default: false)"),
	}, "path", "content")
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := t.sandbox.Resolve(stringArg(args, "path"))
	if err != nil {
		return ErrorResult(err), nil
	}
	content := []byte(stringArg(args, "content"))
	appendMode := boolArg(args, "append", false)

	existed := false
	if info, err := t.fs.Stat(path); err == nil {
		if info.IsDir() {
			return ErrorResult(errors.NewFileSystemError(errors.ErrCodeIOFailure,
				fmt.Sprintf("%q is a directory", path), nil)), nil
		}
		existed = true
	}

	if err := t.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ErrorResult(fsFailure(err, "writing", path)), nil
	}

	if appendMode {
		if err := t.appendTo(path, content); err != nil {
			return ErrorResult(fsFailure(err, "writing", path)), nil
		}
		if !existed {
			return TextResult(fmt.Sprintf("Content appended to: %s (file created)", path)), nil
		}
		return TextResult(fmt.Sprintf("Content appended to: %s", path)), nil
	}

	if err := afero.WriteFile(t.fs, path, content, 0644); err != nil {
		return ErrorResult(fsFailure(err, "writing", path)), nil
	}
	if existed {
		return TextResult(fmt.Sprintf("File overwritten: %s", path)), nil
	}
	return TextResult(fmt.Sprintf("File created: %s", path)), nil
}

func (t *WriteFileTool) appendTo(path string, content []byte) (err error) {
	f, err := t.fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = f.Write(content)
	return err
}
