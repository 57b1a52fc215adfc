package tools

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"mcp-file-gateway/pkg/errors"
)

// DefaultDiffContext is the number of context lines when context is not given
const DefaultDiffContext = 3

// DiffFilesTool compares two text files and reports only the differences
type DiffFilesTool struct {
	fsTool
	maxBytes int64
}

func (t *DiffFilesTool) Name() string { return "diff_files" }

func (t *DiffFilesTool) Description() string {
	return "Compares two text files and returns only the differences"
}

func (t *DiffFilesTool) InputSchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"file_a":  stringProperty("Path of the first file (base)"),
		"file_b":  stringProperty("Path of the second file (comparison)"),
		"context": nonNegativeIntegerProperty("Number of context lines around changes (default: 3)"),
	}, "file_a", "file_b")
}

func (t *DiffFilesTool) Execute(ctx context.Context, args map[string]interface{}) (*Result, error) {
	paths := make([]string, 0, 2)
	for _, label := range []string{"file_a", "file_b"} {
		path, err := t.sandbox.Resolve(stringArg(args, label))
		if err != nil {
			return ErrorResult(labelDenied(label, err)), nil
		}
		paths = append(paths, path)
	}
	fileA, fileB := paths[0], paths[1]
	contextLines := intArg(args, "context", DefaultDiffContext)

	a, serr := t.readFile(fileA, "comparing", t.maxBytes)
	if serr != nil {
		return ErrorResult(serr), nil
	}
	b, serr := t.readFile(fileB, "comparing", t.maxBytes)
	if serr != nil {
		return ErrorResult(serr), nil
	}

	if bytes.Equal(a, b) {
		return TextResult(fmt.Sprintf("No differences between:\n  %s\n  %s", fileA, fileB)), nil
	}

	raw, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(string(a)),
		B:        splitLines(string(b)),
		FromFile: filepath.Base(fileA),
		ToFile:   filepath.Base(fileB),
		Context:  contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}
	if raw == "" {
		return TextResult(fmt.Sprintf("Files differ only in the trailing newline:\n  %s\n  %s", fileA, fileB)), nil
	}

	return TextResult(formatDiff(raw, fileA, fileB)), nil
}

// labelDenied rewrites an access-denied error to name the offending argument
func labelDenied(label string, err error) error {
	se, ok := errors.AsStructured(err)
	if !ok || se.Code != errors.ErrCodeAccessDenied {
		return err
	}
	return errors.NewSandboxError(errors.ErrCodeAccessDenied,
		fmt.Sprintf("Access denied for %s: %q", label, se.Context["path"]), se).
		WithDetails(se.Details).
		WithContext("argument", label)
}

// splitLines splits s into newline-terminated lines. A missing final
// newline is added so the last line compares equal either way.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

// formatDiff turns a unified diff into the readable summary: a header, the
// added/removed line counts, then each hunk with distinct line prefixes
func formatDiff(raw, fileA, fileB string) string {
	var body []string
	additions, deletions := 0, 0
	inHunk := false

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			inHunk = true
			body = append(body, fmt.Sprintf("\n== %s ==", line))
		case !inHunk:
			// file header lines
		case strings.HasPrefix(line, "+"):
			body = append(body, "+ "+line[1:])
			additions++
		case strings.HasPrefix(line, "-"):
			body = append(body, "- "+line[1:])
			deletions++
		case strings.HasPrefix(line, " "):
			body = append(body, "  "+line[1:])
		}
	}

	header := []string{
		fmt.Sprintf("Comparing: %s <-> %s", filepath.Base(fileA), filepath.Base(fileB)),
		fmt.Sprintf("+%d lines added  -%d lines removed", additions, deletions),
		"",
	}
	return strings.Join(append(header, body...), "\n")
}
