package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AllowedRoots is the immutable set of directories every path tool is confined to.
// Each root is absolute, cleaned and, when it exists, symlink-resolved.
type AllowedRoots struct {
	roots []string
}

// NewAllowedRoots normalizes the configured directories once at startup.
// Duplicates are dropped keeping first-appearance order; an empty entry is an error.
func NewAllowedRoots(dirs []string) (*AllowedRoots, error) {
	roots := make([]string, 0, len(dirs))
	seen := make(map[string]bool, len(dirs))

	for i, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("allowed directory %d is empty", i)
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve allowed directory %q: %w", dir, err)
		}
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			abs = real
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to resolve allowed directory %q: %w", dir, err)
		}

		if seen[abs] {
			continue
		}
		seen[abs] = true
		roots = append(roots, abs)
	}

	return &AllowedRoots{roots: roots}, nil
}

// List returns a copy of the roots in configuration order
func (r *AllowedRoots) List() []string {
	out := make([]string, len(r.roots))
	copy(out, r.roots)
	return out
}

// Len returns the number of roots
func (r *AllowedRoots) Len() int {
	return len(r.roots)
}

// String joins the roots for use in messages
func (r *AllowedRoots) String() string {
	if len(r.roots) == 0 {
		return "(none)"
	}
	return strings.Join(r.roots, ", ")
}

// Contains reports whether path lies within one of the roots
func (r *AllowedRoots) Contains(path string) bool {
	return IsAllowed(path, r.roots)
}

// IsRoot reports whether path is exactly one of the roots
func (r *AllowedRoots) IsRoot(path string) bool {
	for _, root := range r.roots {
		if path == root {
			return true
		}
	}
	return false
}

// IsAllowed reports whether candidate equals a root or lies beneath one.
// Both sides must already be absolute and normalized. The prefix match is
// anchored on the separator, so "/allowed2/x" is not inside "/allowed".
func IsAllowed(candidate string, roots []string) bool {
	for _, root := range roots {
		if root == "" {
			continue
		}
		if candidate == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(candidate, prefix) {
			return true
		}
	}
	return false
}
