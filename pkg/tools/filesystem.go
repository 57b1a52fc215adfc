package tools

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"

	"mcp-file-gateway/pkg/errors"
	"mcp-file-gateway/pkg/sandbox"
)

// fsTool is the shared state of the file-system tools: the sandbox every
// path goes through and the file system operations act on
type fsTool struct {
	sandbox *sandbox.Sandbox
	fs      afero.Fs
}

// lstat stats path without following a final symlink when the fs allows it
func (t *fsTool) lstat(path string) (os.FileInfo, error) {
	if lstater, ok := t.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return t.fs.Stat(path)
}

// readFile reads a regular file, refusing directories and anything larger than maxBytes
func (t *fsTool) readFile(path, action string, maxBytes int64) ([]byte, *errors.StructuredError) {
	f, err := t.fs.Open(path)
	if err != nil {
		return nil, fsFailure(err, action, path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fsFailure(err, action, path)
	}
	if info.IsDir() {
		return nil, errors.NewFileSystemError(errors.ErrCodeIOFailure,
			fmt.Sprintf("%q is a directory", path), nil)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fsFailure(err, action, path)
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("File too large: %q exceeds the read limit of %s", path, formatSize(maxBytes)), nil)
	}
	return data, nil
}

// fsFailure maps an OS error to a structured error naming path
func fsFailure(err error, action, path string) *errors.StructuredError {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewFileSystemError(errors.ErrCodeNotFound,
			fmt.Sprintf("File not found: %q", path), err)
	}
	return errors.NewFileSystemError(errors.ErrCodeIOFailure,
		fmt.Sprintf("Error %s %q: %s", action, path, causeText(err)), err)
}

// causeText strips the operation and path a *PathError repeats
func causeText(err error) string {
	var pathErr *fs.PathError
	if stderrors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// formatSize renders a byte count as B, KB or MB with one decimal above bytes
func formatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/1024/1024)
	}
}
