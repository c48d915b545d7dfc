package graph

import (
	"strings"

	"github.com/mvp-joe/cshake/internal/frontend"
)

// Analyzer computes the descriptor of each table key.
type Analyzer struct {
	table *Table
	arena *frontend.Arena
}

// NewAnalyzer creates an analyzer over t.
func NewAnalyzer(t *Table) *Analyzer {
	return &Analyzer{table: t, arena: t.arena}
}

// AnalyzeAll fills the descriptor of every non-system key, one translation
// unit at a time.
func (a *Analyzer) AnalyzeAll() {
	for _, unit := range a.table.units {
		index := BuildMacroIndex(a.arena, unit)
		for _, id := range unit.Entities {
			if !a.table.Has(id) || a.arena.Get(id).System {
				continue
			}
			a.table.descriptors[id] = a.Analyze(id, index)
		}
	}
}

// Analyze computes the descriptor of symbol id using the macro index of its
// translation unit.
func (a *Analyzer) Analyze(id frontend.ID, index *MacroIndex) *Descriptor {
	desc := NewDescriptor()
	sym := a.arena.Get(id)
	if sym == nil || !sym.HasLocation() {
		return desc
	}

	if sym.Definition != frontend.NoEntity {
		desc.Definitions.Add(sym.Definition)
	}

	for _, ref := range sym.Children {
		a.reference(a.arena.Get(ref), desc)
	}

	file := a.table.canonicalFile(sym)
	var directives []*frontend.Entity
	for _, mid := range index.Range(sym.StartLine, sym.EndLine) {
		m := a.arena.Get(mid)
		if a.table.canonicalFile(m) != file {
			continue
		}

		switch m.Kind {
		case frontend.KindMacroExpansion:
			desc.Deps.Add(mid)
			if m.Definition != frontend.NoEntity {
				desc.Deps.Add(m.Definition)
			}
		case frontend.KindInclusionDirective:
			desc.Deps.Add(mid)
			directives = append(directives, m)
		}
	}

	for _, directive := range directives {
		for _, mid := range a.includedMacros(directive, index) {
			desc.Deps.Add(mid)
			if m := a.arena.Get(mid); m.Kind == frontend.KindMacroExpansion && m.Definition != frontend.NoEntity {
				desc.Deps.Add(m.Definition)
			}
		}
	}

	return desc
}

// reference adds the edges a single reference entity contributes.
func (a *Analyzer) reference(ref *frontend.Entity, desc *Descriptor) {
	if ref == nil {
		return
	}

	if a.table.Has(ref.Referenced) {
		desc.Deps.Add(ref.Referenced)
	}

	def := a.arena.Get(ref.Definition)
	if def == nil {
		return
	}
	if a.table.Has(def.ID) {
		desc.Deps.Add(def.ID)
	}
	if a.table.Has(def.TypeDecl) {
		desc.Deps.Add(def.TypeDecl)
	}
	if a.table.Has(def.Underlying) {
		desc.Deps.Add(def.Underlying)
	}
}

// includedMacros returns the macro entities that live in the file a
// directive includes. Resolved directives match by canonical path; an
// unresolved directive falls back to a substring match on its spelling.
func (a *Analyzer) includedMacros(directive *frontend.Entity, index *MacroIndex) []frontend.ID {
	target := ""
	if directive.IncludeTarget != "" {
		if p, err := a.table.cache.Canonical(directive.IncludeTarget); err == nil {
			target = p.String()
		}
	}

	var out []frontend.ID
	for _, mid := range index.All() {
		m := a.arena.Get(mid)
		if m.Kind != frontend.KindMacroDefinition && m.Kind != frontend.KindMacroExpansion {
			continue
		}

		if target != "" {
			if a.table.canonicalFile(m) == target {
				out = append(out, mid)
			}
		} else if strings.Contains(m.Location.File, directive.Name) {
			out = append(out, mid)
		}
	}
	return out
}
