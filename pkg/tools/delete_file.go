package tools

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"mcp-file-gateway/pkg/errors"
	"mcp-file-gateway/pkg/sandbox"
)

// DeleteFileTool removes a file, an empty directory, or with recursive set
// a directory tree. Allowed roots can never be deleted.
type DeleteFileTool struct {
	fsTool
}

func (t *DeleteFileTool) Name() string { return "delete_file" }

func (t *DeleteFileTool) Description() string {
	return "Deletes a file or an empty directory"
}

func (t *DeleteFileTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"path":      stringProperty("Path of the file or directory to delete"),
		"recursive": booleanProperty("Delete a directory even if it is not empty (default: false)"),
	}, "path")
}

func (t *DeleteFileTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	path, err := t.sandbox.ResolveEntry(stringArg(args, "path"))
	if err != nil {
		return ErrorResult(err), nil
	}
	recursive := boolArg(args, "recursive", false)

	if denied := t.protectRoots(path); denied != nil {
		return ErrorResult(denied), nil
	}

	info, err := t.lstat(path)
	if err != nil {
		if serr := fsFailure(err, "deleting", path); serr.Code != errors.ErrCodeNotFound {
			return ErrorResult(serr), nil
		}
		return ErrorResult(errors.NewFileSystemError(errors.ErrCodeNotFound,
			fmt.Sprintf("File or directory not found: %q", path), err)), nil
	}

	if !info.IsDir() {
		if err := t.fs.Remove(path); err != nil {
			return ErrorResult(fsFailure(err, "deleting", path)), nil
		}
		return TextResult(fmt.Sprintf("File deleted: %s", path)), nil
	}

	if recursive {
		if err := t.fs.RemoveAll(path); err != nil {
			return ErrorResult(fsFailure(err, "deleting", path)), nil
		}
		return TextResult(fmt.Sprintf("Directory deleted recursively: %s", path)), nil
	}

	entries, err := afero.ReadDir(t.fs, path)
	if err != nil {
		return ErrorResult(fsFailure(err, "deleting", path)), nil
	}
	if len(entries) > 0 {
		return ErrorResult(errors.NewFileSystemError(errors.ErrCodeNotEmpty,
			fmt.Sprintf("Directory is not empty: %q", path), nil).
			WithDetails("Hint: use recursive: true to delete it anyway.")), nil
	}

	if err := t.fs.Remove(path); err != nil {
		return ErrorResult(fsFailure(err, "deleting", path)), nil
	}
	return TextResult(fmt.Sprintf("Directory deleted: %s", path)), nil
}

// protectRoots denies deleting an allowed root or any directory containing one
func (t *DeleteFileTool) protectRoots(path string) *errors.StructuredError {
	roots := t.sandbox.Roots()
	if roots.IsRoot(path) {
		return errors.NewSandboxError(errors.ErrCodeAccessDenied,
			fmt.Sprintf("Denied: the allowed root %q cannot be deleted.", path), nil).
			WithContext("path", path)
	}

	for _, root := range roots.List() {
		if sandbox.IsAllowed(root, []string{path}) {
			return errors.NewSandboxError(errors.ErrCodeAccessDenied,
				fmt.Sprintf("Denied: %q contains the allowed root %q.", path, root), nil).
				WithContext("path", path)
		}
	}
	return nil
}
