package graph

import (
	"sort"

	"github.com/mvp-joe/cshake/internal/frontend"
)

// macroEntry is one indexed preprocessor entity.
type macroEntry struct {
	line int
	id   frontend.ID
}

// MacroIndex orders the macro definitions, macro expansions and inclusion
// directives of one translation unit by expansion line. Entries sharing a
// line are all kept, in discovery order.
type MacroIndex struct {
	entries []macroEntry
}

// BuildMacroIndex indexes the preprocessor entities of unit outside system
// headers.
func BuildMacroIndex(arena *frontend.Arena, unit *frontend.TranslationUnit) *MacroIndex {
	m := &MacroIndex{}
	for _, id := range unit.Entities {
		e := arena.Get(id)
		if e.System || !e.Kind.IsMacroOrInclude() {
			continue
		}
		m.entries = append(m.entries, macroEntry{line: e.ExpansionLine, id: id})
	}

	sort.SliceStable(m.entries, func(i, j int) bool {
		return m.entries[i].line < m.entries[j].line
	})
	return m
}

// Range returns the entries whose expansion line lies in [start, end].
func (m *MacroIndex) Range(start, end int) []frontend.ID {
	if start > end {
		return nil
	}

	lo := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].line >= start })
	var out []frontend.ID
	for i := lo; i < len(m.entries) && m.entries[i].line <= end; i++ {
		out = append(out, m.entries[i].id)
	}
	return out
}

// All returns every entry in index order.
func (m *MacroIndex) All() []frontend.ID {
	out := make([]frontend.ID, len(m.entries))
	for i, entry := range m.entries {
		out[i] = entry.id
	}
	return out
}

// Len returns the number of indexed entries.
func (m *MacroIndex) Len() int {
	return len(m.entries)
}
