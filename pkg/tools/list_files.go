package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"mcp-file-gateway/pkg/errors"
)

// DefaultListDepth is the recursion limit when max_depth is not given
const DefaultListDepth = 3

// ListFilesTool lists a directory, directories first, with file sizes
type ListFilesTool struct {
	fsTool
}

func (t *ListFilesTool) Name() string { return "list_files" }

func (t *ListFilesTool) Description() string {
	return "Lists files and directories in a path"
}

func (t *ListFilesTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"path":      stringProperty("Directory to list"),
		"recursive": booleanProperty("List subdirectories recursively (default: false)"),
		"max_depth": nonNegativeIntegerProperty("Maximum depth for recursive listing (default: 3)"),
	}, "path")
}

func (t *ListFilesTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	dir, err := t.sandbox.Resolve(stringArg(args, "path"))
	if err != nil {
		return ErrorResult(err), nil
	}
	recursive := boolArg(args, "recursive", false)
	maxDepth := intArg(args, "max_depth", DefaultListDepth)

	info, err := t.fs.Stat(dir)
	if err != nil {
		return ErrorResult(fsFailure(err, "listing", dir)), nil
	}
	if !info.IsDir() {
		return ErrorResult(errors.NewFileSystemError(errors.ErrCodeNotADirectory,
			fmt.Sprintf("%q is not a directory", dir), nil)), nil
	}

	lines, err := t.listDir(dir, recursive, 0, maxDepth)
	if err != nil {
		return ErrorResult(fsFailure(err, "listing", dir)), nil
	}
	if len(lines) == 0 {
		return TextResult(fmt.Sprintf("%s (empty)", dir)), nil
	}
	return TextResult(dir + "\n" + strings.Join(lines, "\n")), nil
}

// listDir renders one directory level. Symlinks are listed, never followed.
func (t *ListFilesTool) listDir(dir string, recursive bool, depth, maxDepth int) ([]string, error) {
	entries, err := afero.ReadDir(t.fs, dir)
	if err != nil {
		return nil, err
	}
	sortEntries(entries)

	indent := strings.Repeat("  ", depth)
	lines := make([]string, 0, len(entries))

	for _, entry := range entries {
		switch {
		case entry.Mode()&os.ModeSymlink != 0:
			lines = append(lines, fmt.Sprintf("%s%s (symlink)", indent, entry.Name()))
		case entry.IsDir():
			lines = append(lines, fmt.Sprintf("%s%s/", indent, entry.Name()))
			if recursive && depth < maxDepth {
				sub, err := t.listDir(filepath.Join(dir, entry.Name()), recursive, depth+1, maxDepth)
				if err != nil {
					return nil, err
				}
				lines = append(lines, sub...)
			}
		default:
			lines = append(lines, fmt.Sprintf("%s%s (%s)", indent, entry.Name(), formatSize(entry.Size())))
		}
	}

	return lines, nil
}

// sortEntries orders directories before everything else, then by name
func sortEntries(entries []os.FileInfo) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return entries[i].Name() < entries[j].Name()
	})
}
