package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"mcp-file-gateway/pkg/errors"
)

// Sandbox resolves caller-supplied paths and confines them to AllowedRoots.
// It holds no per-call state and is safe for concurrent use.
type Sandbox struct {
	roots *AllowedRoots
}

// New creates a sandbox over roots
func New(roots *AllowedRoots) *Sandbox {
	return &Sandbox{roots: roots}
}

// Roots returns the allowed roots
func (s *Sandbox) Roots() *AllowedRoots {
	return s.roots
}

// Resolve turns raw into an absolute path with every symlink resolved and
// checks it against the allowed roots. Paths that do not exist yet are
// resolved through their deepest existing ancestor.
func (s *Sandbox) Resolve(raw string) (string, error) {
	abs, err := absolute(raw)
	if err != nil {
		return "", err
	}

	real, err := resolveReal(abs)
	if err != nil {
		return "", s.denied(abs, err)
	}

	if !s.roots.Contains(real) {
		return "", s.denied(abs, nil)
	}
	return real, nil
}

// ResolveEntry is Resolve without dereferencing the final path component,
// so the result names a directory entry (possibly a symlink) rather than
// its target.
func (s *Sandbox) ResolveEntry(raw string) (string, error) {
	abs, err := absolute(raw)
	if err != nil {
		return "", err
	}

	parent := filepath.Dir(abs)
	if parent == abs {
		return s.Resolve(abs)
	}

	realParent, err := resolveReal(parent)
	if err != nil {
		return "", s.denied(abs, err)
	}

	entry := filepath.Join(realParent, filepath.Base(abs))
	if !s.roots.Contains(entry) {
		return "", s.denied(abs, nil)
	}
	return entry, nil
}

func (s *Sandbox) denied(abs string, cause error) *errors.StructuredError {
	return errors.NewSandboxError(errors.ErrCodeAccessDenied,
		fmt.Sprintf("Access denied: %q is not inside an allowed directory.", abs), cause).
		WithDetails("Allowed: " + s.roots.String()).
		WithContext("path", abs)
}

// absolute validates raw and makes it absolute against the working directory
func absolute(raw string) (string, error) {
	if raw == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidArgument, "Path must not be empty", nil)
	}
	if strings.ContainsRune(raw, 0) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidArgument, "Path contains a NUL byte", nil)
	}
	if !utf8.ValidString(raw) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidArgument, "Path is not valid UTF-8", nil)
	}

	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", errors.NewFileSystemError(errors.ErrCodeIOFailure,
			fmt.Sprintf("Cannot resolve path %q", raw), err)
	}
	return abs, nil
}

// resolveReal resolves every symlink in abs. For a path that does not fully
// exist, the deepest existing ancestor is resolved and the remainder is
// re-attached; a dangling symlink as the first missing component is refused.
func resolveReal(abs string) (string, error) {
	real, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return real, nil
	}

	existing := abs
	for {
		dir := filepath.Dir(existing)
		if dir == existing {
			return "", fmt.Errorf("no existing ancestor for %s", abs)
		}
		existing = dir
		if _, err := os.Stat(existing); err == nil {
			break
		}
	}

	remaining, err := filepath.Rel(existing, abs)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	next := filepath.Join(existing, strings.SplitN(remaining, string(filepath.Separator), 2)[0])
	if info, err := os.Lstat(next); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("component %s is a broken symlink", next)
	}

	realExisting, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", fmt.Errorf("failed to resolve ancestor %s: %w", existing, err)
	}
	return filepath.Join(realExisting, remaining), nil
}
