package graph

import (
	"fmt"

	"github.com/mvp-joe/cshake/internal/frontend"
	"github.com/mvp-joe/cshake/internal/paths"
)

// Table is the global symbol table: every top-level declaration or
// definition of every translation unit, each owning one descriptor.
//
// It is built and filled by BuildTable, AnalyzeAll and Merge, in that order,
// and is read-only afterwards.
type Table struct {
	arena *frontend.Arena
	cache *paths.Cache
	units []*frontend.TranslationUnit

	descriptors map[frontend.ID]*Descriptor
	keys        []frontend.ID // discovery order

	// Includes holds every inclusion directive observed at top level.
	Includes []frontend.ID
	// SystemIncludes maps the bare filename of each system header an entity
	// was seen in to its canonical path.
	SystemIncludes map[string]paths.CanonicalPath
}

// BuildTable seeds the symbol table from the top-level entities of units.
func BuildTable(arena *frontend.Arena, units []*frontend.TranslationUnit, cache *paths.Cache) (*Table, error) {
	if cache == nil {
		cache = paths.NewCache()
	}

	t := &Table{
		arena:          arena,
		cache:          cache,
		units:          units,
		descriptors:    make(map[frontend.ID]*Descriptor),
		SystemIncludes: make(map[string]paths.CanonicalPath),
	}

	for _, unit := range units {
		for _, id := range unit.Entities {
			e := arena.Get(id)

			switch {
			case e.Kind == frontend.KindInclusionDirective:
				t.Includes = append(t.Includes, id)
			case e.IsDeclaration || e.IsDefinition:
				t.descriptors[id] = NewDescriptor()
				t.keys = append(t.keys, id)
			}

			if e.System && !e.Location.IsZero() {
				canonical, err := cache.Canonical(e.Location.File)
				if err != nil {
					return nil, fmt.Errorf("failed to register system header: %w", err)
				}
				t.SystemIncludes[canonical.Base()] = canonical
			}
		}
	}

	return t, nil
}

// Arena returns the arena the table's entities live in.
func (t *Table) Arena() *frontend.Arena {
	return t.arena
}

// Cache returns the canonical path cache shared by the pipeline.
func (t *Table) Cache() *paths.Cache {
	return t.cache
}

// Keys returns every key in discovery order.
func (t *Table) Keys() []frontend.ID {
	return t.keys
}

// Has reports whether id is a table key.
func (t *Table) Has(id frontend.ID) bool {
	_, ok := t.descriptors[id]
	return ok
}

// Descriptor returns the descriptor of key id.
func (t *Table) Descriptor(id frontend.ID) (*Descriptor, bool) {
	d, ok := t.descriptors[id]
	return d, ok
}

// canonicalFile returns the canonical path of e's file, or its raw spelling
// when the file cannot be resolved.
func (t *Table) canonicalFile(e *frontend.Entity) string {
	if p, err := t.cache.Canonical(e.Location.File); err == nil {
		return p.String()
	}
	return e.Location.File
}
