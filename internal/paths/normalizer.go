package paths

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrUnresolvableInclude indicates an include spelling maps to no file on disk
// and to no known system header. Callers treat it as non-fatal.
var ErrUnresolvableInclude = errors.New("unresolvable include")

// Directive is the part of an inclusion directive the normalizer needs.
type Directive struct {
	// Name is the raw spelling between the quotes or angle brackets.
	Name string
	// File is the file containing the directive.
	File string
	// Target is the file the front end resolved the directive to, or "".
	Target string
}

// Normalizer maps include directives to canonical paths.
type Normalizer struct {
	cache   *Cache
	systems map[string]CanonicalPath
}

// NewNormalizer creates a normalizer consulting the given system include
// registry (bare filename to canonical path).
func NewNormalizer(cache *Cache, systemIncludes map[string]CanonicalPath) *Normalizer {
	if cache == nil {
		cache = NewCache()
	}
	return &Normalizer{cache: cache, systems: systemIncludes}
}

// IsSystem reports whether the bare filename of p is a registered system header.
func (n *Normalizer) IsSystem(p CanonicalPath) bool {
	_, ok := n.systems[p.Base()]
	return ok
}

// Include resolves d to the canonical path of its target.
//
// A bare filename registered as a system header wins. Otherwise the file the
// front end resolved is used, falling back to the spelling joined onto the
// directive's directory.
func (n *Normalizer) Include(d Directive) (CanonicalPath, error) {
	if p, ok := n.systems[filepath.Base(d.Name)]; ok {
		return p, nil
	}

	if d.Target != "" {
		if p, err := n.cache.Canonical(d.Target); err == nil {
			return p, nil
		}
	}

	joined := filepath.Join(filepath.Dir(d.File), d.Name)
	p, err := n.cache.Canonical(joined)
	if err != nil {
		return "", fmt.Errorf("%w: %q in %s: %v", ErrUnresolvableInclude, d.Name, d.File, err)
	}
	return p, nil
}
