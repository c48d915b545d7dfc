package graph

import (
	"github.com/mvp-joe/cshake/internal/frontend"
)

// locationKey identifies a declaration's position across translation units.
// The name is part of the key so unrelated symbols that coincide positionally
// stay apart.
type locationKey struct {
	file   string
	line   int
	column int
	name   string
}

// Merge unifies the definitions of declarations that share a location.
//
// Phase one collects the union of definitions at every location; phase two
// hands each declaration the union for its own location. The phases never
// interleave, so the result does not depend on unit order.
func Merge(t *Table) error {
	keyOf := func(id frontend.ID) (locationKey, bool, error) {
		e := t.arena.Get(id)
		if !e.IsDeclaration {
			return locationKey{}, false, nil
		}
		if e.Location.IsZero() {
			return locationKey{}, false, &MissingLocationError{Name: e.Name, Kind: e.Kind}
		}
		return locationKey{
			file:   t.canonicalFile(e),
			line:   e.Location.Line,
			column: e.Location.Column,
			name:   e.Name,
		}, true, nil
	}

	unions := make(map[locationKey]IDSet)
	for _, id := range t.keys {
		key, ok, err := keyOf(id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if unions[key] == nil {
			unions[key] = IDSet{}
		}
		unions[key].Merge(t.descriptors[id].Definitions)
	}

	for _, id := range t.keys {
		key, ok, _ := keyOf(id)
		if !ok {
			continue
		}
		t.descriptors[id].Definitions.Merge(unions[key])
	}

	return nil
}
