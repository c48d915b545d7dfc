package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CanonicalPath is an absolute, cleaned path with symlinks resolved. It is the
// grouping key for per-file work, independent of how an include was spelled.
type CanonicalPath string

// Canonical resolves path to its CanonicalPath. The file must exist.
func Canonical(path string) (CanonicalPath, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize %s: %w", path, err)
	}
	return CanonicalPath(filepath.Clean(resolved)), nil
}

func (p CanonicalPath) String() string {
	return string(p)
}

// Base returns the bare filename.
func (p CanonicalPath) Base() string {
	return filepath.Base(string(p))
}

// Rel returns p relative to root, and false when p lies outside root.
func (p CanonicalPath) Rel(root CanonicalPath) (string, bool) {
	rel, err := filepath.Rel(string(root), string(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// Cache memoizes Canonical so each spelling of a path hits the filesystem once.
type Cache struct {
	resolved map[string]CanonicalPath
	failed   map[string]error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		resolved: make(map[string]CanonicalPath),
		failed:   make(map[string]error),
	}
}

// Canonical returns the cached canonical form of path.
func (c *Cache) Canonical(path string) (CanonicalPath, error) {
	if p, ok := c.resolved[path]; ok {
		return p, nil
	}
	if err, ok := c.failed[path]; ok {
		return "", err
	}

	p, err := Canonical(path)
	if err != nil {
		c.failed[path] = err
		return "", err
	}
	c.resolved[path] = p
	return p, nil
}
