package graph

import (
	"fmt"
	"log"

	"github.com/mvp-joe/cshake/internal/frontend"
)

// Extraction is the reachability closure of a set of entry symbols.
type Extraction struct {
	// Symbols lists every extracted entity in ascending ID order.
	Symbols []frontend.ID
	// Roots are the keys that matched an entry name, in discovery order.
	Roots []frontend.ID
	// Parents maps each extracted entity to the entity it was first reached
	// from. Roots map to NoEntity.
	Parents map[frontend.ID]frontend.ID
	// Unmatched lists entry names that matched no key.
	Unmatched []string

	set IDSet
}

// Contains reports whether id was extracted.
func (x *Extraction) Contains(id frontend.ID) bool {
	return x.set.Has(id)
}

// Len returns the number of extracted entities.
func (x *Extraction) Len() int {
	return len(x.Symbols)
}

// Extract computes the breadth-first closure over deps and definitions,
// starting from every key whose name is one of entryNames.
//
// Macro definitions, macro expansions and inclusion directives are terminal
// leaves and are never looked up in the table. Any other dequeued entity
// without a descriptor is a GraphConsistencyError.
func Extract(t *Table, entryNames []string) (*Extraction, error) {
	wanted := make(map[string]bool, len(entryNames))
	for _, name := range entryNames {
		wanted[name] = true
	}

	x := &Extraction{
		Parents: make(map[frontend.ID]frontend.ID),
		set:     IDSet{},
	}

	matched := make(map[string]bool)
	var queue []frontend.ID
	for _, id := range t.keys {
		name := t.arena.Get(id).Name
		if name == "" || !wanted[name] {
			continue
		}
		matched[name] = true
		x.Roots = append(x.Roots, id)
		x.Parents[id] = frontend.NoEntity
		x.set.Add(id)
		queue = append(queue, id)
	}

	for _, name := range entryNames {
		if !matched[name] {
			log.Printf("Warning: entry symbol %q not found in any translation unit", name)
			x.Unmatched = append(x.Unmatched, name)
		}
	}
	if len(x.Roots) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoEntrySymbols, entryNames)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		e := t.arena.Get(id)
		if isTerminal(e.Kind) {
			continue
		}

		desc, ok := t.descriptors[id]
		if !ok {
			return nil, &GraphConsistencyError{Name: e.Name, Kind: e.Kind, Location: e.Location}
		}

		for _, next := range desc.Edges() {
			if x.set.Has(next) {
				continue
			}
			x.set.Add(next)
			x.Parents[next] = id
			queue = append(queue, next)
		}
	}

	x.Symbols = x.set.Sorted()
	return x, nil
}
