package graph

import (
	"github.com/mvp-joe/cshake/internal/frontend"
)

// unitFixture builds translation units by hand so graph stages can be tested
// without the parser.
type unitFixture struct {
	arena *frontend.Arena
	units []*frontend.TranslationUnit
}

func newUnitFixture() *unitFixture {
	return &unitFixture{arena: frontend.NewArena()}
}

// unit starts a new translation unit; subsequent top-level entities join it.
func (f *unitFixture) unit(path string) *frontend.TranslationUnit {
	u := &frontend.TranslationUnit{Index: len(f.units), Path: path, Files: []string{path}}
	f.units = append(f.units, u)
	return u
}

func (f *unitFixture) current() *frontend.TranslationUnit {
	return f.units[len(f.units)-1]
}

func baseEntity(kind frontend.Kind, name, file string, start, end int) frontend.Entity {
	return frontend.Entity{
		Kind:          kind,
		Name:          name,
		Location:      frontend.Location{File: file, Line: start, Column: 1},
		StartLine:     start,
		EndLine:       end,
		ExpansionLine: start,
		Definition:    frontend.NoEntity,
		Referenced:    frontend.NoEntity,
		TypeDecl:      frontend.NoEntity,
		Underlying:    frontend.NoEntity,
	}
}

// top adds a top-level entity to the current unit.
func (f *unitFixture) top(e frontend.Entity) frontend.ID {
	e.TU = f.current().Index
	id := f.arena.Add(e)
	f.current().Entities = append(f.current().Entities, id)
	return id
}

func (f *unitFixture) function(name, file string, start, end int, definition bool) frontend.ID {
	e := baseEntity(frontend.KindFunction, name, file, start, end)
	e.IsDeclaration = true
	e.IsDefinition = definition
	id := f.top(e)
	if definition {
		f.arena.Get(id).Definition = id
	}
	return id
}

func (f *unitFixture) macroDef(name, file string, line int) frontend.ID {
	id := f.top(baseEntity(frontend.KindMacroDefinition, name, file, line, line))
	f.arena.Get(id).Definition = id
	return id
}

func (f *unitFixture) expansion(name, file string, line int, def frontend.ID) frontend.ID {
	id := f.top(baseEntity(frontend.KindMacroExpansion, name, file, line, line))
	f.arena.Get(id).Definition = def
	return id
}

func (f *unitFixture) directive(name, file string, line int, target string) frontend.ID {
	e := baseEntity(frontend.KindInclusionDirective, name, file, line, line)
	e.IncludeTarget = target
	return f.top(e)
}

// ref records a reference from owner to referenced/definition.
func (f *unitFixture) ref(owner, referenced, definition frontend.ID) {
	o := f.arena.Get(owner)
	e := baseEntity(frontend.KindReference, "", o.Location.File, o.StartLine, o.StartLine)
	e.Referenced = referenced
	e.Definition = definition
	e.TU = o.TU
	id := f.arena.Add(e)
	o = f.arena.Get(owner)
	o.Children = append(o.Children, id)
}

// build runs table construction, analysis and merge.
func (f *unitFixture) build() (*Table, error) {
	t, err := BuildTable(f.arena, f.units, nil)
	if err != nil {
		return nil, err
	}
	NewAnalyzer(t).AnalyzeAll()
	if err := Merge(t); err != nil {
		return nil, err
	}
	return t, nil
}
