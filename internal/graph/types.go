package graph

import (
	"sort"

	"github.com/mvp-joe/cshake/internal/frontend"
)

// IDSet is an unordered set of entity IDs.
type IDSet map[frontend.ID]struct{}

// Add inserts id.
func (s IDSet) Add(id frontend.ID) {
	s[id] = struct{}{}
}

// Has reports whether id is present.
func (s IDSet) Has(id frontend.ID) bool {
	_, ok := s[id]
	return ok
}

// Merge inserts every member of other.
func (s IDSet) Merge(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Sorted returns the members in ascending ID order.
func (s IDSet) Sorted() []frontend.ID {
	out := make([]frontend.ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Descriptor holds the outgoing edges of one table key.
type Descriptor struct {
	// Deps are entities referenced directly, through type resolution, or by
	// textual macro and include overlap.
	Deps IDSet
	// Definitions are entities that define the key.
	Definitions IDSet
}

// NewDescriptor returns an empty descriptor.
func NewDescriptor() *Descriptor {
	return &Descriptor{Deps: IDSet{}, Definitions: IDSet{}}
}

// Edges returns deps and definitions combined, in ascending ID order.
func (d *Descriptor) Edges() []frontend.ID {
	all := IDSet{}
	all.Merge(d.Deps)
	all.Merge(d.Definitions)
	return all.Sorted()
}

// isTerminal reports whether entities of kind k are leaves that never carry
// a descriptor.
func isTerminal(k frontend.Kind) bool {
	return k.IsMacroOrInclude()
}
