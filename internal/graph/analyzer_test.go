package graph

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/cshake/internal/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Dependency Analyzer and Merger:
// - Own definition lands in Definitions
// - References add the referenced declaration and its definition when tracked
// - A referenced variable's declared type and a typedef's underlying type are added
// - Untracked targets (enum constants, macros) are not added as deps
// - Macro expansions in the symbol's line range and same file are added with their #define
// - Expansions on the same lines of a different file are ignored
// - Directives in range pull in macros of the resolved target by canonical path
// - Expansions inside an included file bring their #define from the including file
// - Unresolved directives fall back to substring matching
// - A symbol without a location gets an empty descriptor
// - System keys keep empty descriptors
// - Merge symmetry: a declaration and a same-location declaration from another unit
//   converge regardless of unit order
// - Merge keeps same-location declarations with different names apart
// - Merge reports a declaration without a location

func TestAnalyze_References(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")

	tag := f.top(func() frontend.Entity {
		e := baseEntity(frontend.KindType, "point", "/src/main.c", 1, 4)
		e.IsDeclaration, e.IsDefinition = true, true
		return e
	}())
	f.arena.Get(tag).Definition = tag

	typedef := f.top(func() frontend.Entity {
		e := baseEntity(frontend.KindTypedef, "point_t", "/src/main.c", 5, 5)
		e.IsDeclaration = true
		return e
	}())
	f.arena.Get(typedef).Definition = typedef
	f.arena.Get(typedef).Underlying = tag

	origin := f.top(func() frontend.Entity {
		e := baseEntity(frontend.KindVariable, "origin", "/src/main.c", 6, 6)
		e.IsDeclaration, e.IsDefinition = true, true
		return e
	}())
	f.arena.Get(origin).Definition = origin
	f.arena.Get(origin).TypeDecl = typedef

	proto := f.function("helper", "/src/main.c", 7, 7, false)
	mainFn := f.function("main", "/src/main.c", 8, 12, true)
	helper := f.function("helper", "/src/main.c", 13, 15, true)
	f.arena.Get(proto).Definition = helper

	enumConst := f.arena.Add(baseEntity(frontend.KindEnumConstant, "RED", "/src/main.c", 2, 2))

	f.ref(mainFn, proto, helper)
	f.ref(mainFn, origin, origin)
	f.ref(mainFn, typedef, typedef)
	f.ref(mainFn, enumConst, enumConst)

	table, err := f.build()
	require.NoError(t, err)

	desc, ok := table.Descriptor(mainFn)
	require.True(t, ok)
	assert.Equal(t, []frontend.ID{tag, typedef, origin, proto, helper}, desc.Deps.Sorted())
	assert.Equal(t, []frontend.ID{mainFn}, desc.Definitions.Sorted())

	protoDesc, _ := table.Descriptor(proto)
	assert.Equal(t, []frontend.ID{helper}, protoDesc.Definitions.Sorted())
}

func TestAnalyze_MacroOverlap(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	square := f.macroDef("SQUARE", "/src/main.c", 1)
	unused := f.macroDef("UNUSED", "/src/main.c", 2)
	g := f.function("g", "/src/main.c", 3, 5, true)
	inG := f.expansion("SQUARE", "/src/main.c", 4, square)
	mainFn := f.function("main", "/src/main.c", 6, 9, true)
	inMain := f.expansion("SQUARE", "/src/main.c", 7, square)
	// Same line as main's body but in a header.
	other := f.expansion("UNUSED", "/src/other.h", 8, unused)

	table, err := f.build()
	require.NoError(t, err)

	mainDesc, _ := table.Descriptor(mainFn)
	assert.Equal(t, []frontend.ID{square, inMain}, mainDesc.Deps.Sorted())
	assert.False(t, mainDesc.Deps.Has(inG))
	assert.False(t, mainDesc.Deps.Has(other))
	assert.False(t, mainDesc.Deps.Has(unused))

	gDesc, _ := table.Descriptor(g)
	assert.Equal(t, []frontend.ID{square, inG}, gDesc.Deps.Sorted())
}

func TestAnalyze_DirectiveInRange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.c")
	table := filepath.Join(dir, "vendor", "table.inc")
	lookalike := filepath.Join(dir, "vendor", "bigtable.inc")
	for _, path := range []string{mainPath, table, lookalike} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))
	}

	f := newUnitFixture()
	f.unit(mainPath)
	mainFn := f.function("main", mainPath, 1, 5, true)
	resolved := f.directive("vendor/table.inc", mainPath, 2, table)
	entry := f.macroDef("ENTRY", table, 1)
	bigEntry := f.macroDef("BIG_ENTRY", lookalike, 1)

	built, err := f.build()
	require.NoError(t, err)

	desc, _ := built.Descriptor(mainFn)
	assert.True(t, desc.Deps.Has(resolved))
	assert.True(t, desc.Deps.Has(entry))
	assert.False(t, desc.Deps.Has(bigEntry), "canonical matching must not match lookalike files")
}

func TestAnalyze_DirectiveExpansionKeepsDefinition(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mainPath := filepath.Join(dir, "main.c")
	table := filepath.Join(dir, "table.inc")
	for _, path := range []string{mainPath, table} {
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0644))
	}

	f := newUnitFixture()
	f.unit(mainPath)
	entry := f.macroDef("ENTRY", mainPath, 1)
	unused := f.macroDef("UNUSED", mainPath, 2)
	sum := f.function("sum", mainPath, 3, 8, true)
	directive := f.directive("table.inc", mainPath, 6, table)
	first := f.expansion("ENTRY", table, 1, entry)
	second := f.expansion("ENTRY", table, 2, entry)

	built, err := f.build()
	require.NoError(t, err)

	desc, _ := built.Descriptor(sum)
	assert.True(t, desc.Deps.Has(directive))
	assert.True(t, desc.Deps.Has(first))
	assert.True(t, desc.Deps.Has(second))
	assert.True(t, desc.Deps.Has(entry))
	assert.False(t, desc.Deps.Has(unused))
}

func TestAnalyze_UnresolvedDirectiveSubstring(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	mainFn := f.function("main", "/src/main.c", 1, 5, true)
	unresolved := f.directive("table.inc", "/src/main.c", 2, "")
	entry := f.macroDef("ENTRY", "/src/gen/table.inc", 1)
	lookalike := f.macroDef("BIG", "/src/gen/bigtable.inc", 1)
	unrelated := f.macroDef("OTHER", "/src/gen/other.h", 1)

	table, err := f.build()
	require.NoError(t, err)

	desc, _ := table.Descriptor(mainFn)
	assert.True(t, desc.Deps.Has(unresolved))
	assert.True(t, desc.Deps.Has(entry))
	assert.True(t, desc.Deps.Has(lookalike))
	assert.False(t, desc.Deps.Has(unrelated))
}

func TestAnalyze_NoLocation(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	e := baseEntity(frontend.KindFunction, "ghost", "", 0, 0)
	e.Location = frontend.Location{}
	e.IsDefinition = true
	id := f.top(e)
	f.arena.Get(id).Definition = id

	table, err := BuildTable(f.arena, f.units, nil)
	require.NoError(t, err)

	desc := NewAnalyzer(table).Analyze(id, BuildMacroIndex(f.arena, f.units[0]))
	assert.Empty(t, desc.Deps)
	assert.Empty(t, desc.Definitions)
}

func TestAnalyze_SystemKeysStayEmpty(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	a := f.function("a", "/src/main.c", 1, 1, true)
	sys := f.function("sys", "/src/main.c", 2, 2, true)
	f.arena.Get(sys).System = true
	f.ref(sys, a, a)

	table, err := BuildTable(f.arena, f.units, nil)
	require.NoError(t, err)
	NewAnalyzer(table).AnalyzeAll()

	desc, ok := table.Descriptor(sys)
	require.True(t, ok)
	assert.Empty(t, desc.Deps)
}

func TestMerge_Symmetry(t *testing.T) {
	t.Parallel()

	build := func(definitionFirst bool) (frontend.ID, frontend.ID, frontend.ID, *Table) {
		f := newUnitFixture()
		var declA, declB, def frontend.ID

		unitWithDefinition := func() {
			f.unit("/src/util.c")
			declB = f.function("add", "/src/util.h", 1, 1, false)
			def = f.function("add", "/src/util.c", 3, 5, true)
			f.arena.Get(declB).Definition = def
		}
		unitWithDeclaration := func() {
			f.unit("/src/main.c")
			declA = f.function("add", "/src/util.h", 1, 1, false)
		}

		if definitionFirst {
			unitWithDefinition()
			unitWithDeclaration()
		} else {
			unitWithDeclaration()
			unitWithDefinition()
		}

		table, err := f.build()
		require.NoError(t, err)
		return declA, declB, def, table
	}

	for _, definitionFirst := range []bool{true, false} {
		declA, declB, def, table := build(definitionFirst)

		a, _ := table.Descriptor(declA)
		b, _ := table.Descriptor(declB)
		assert.Equal(t, []frontend.ID{def}, a.Definitions.Sorted())
		assert.Equal(t, a.Definitions.Sorted(), b.Definitions.Sorted())
	}
}

func TestMerge_NameDisambiguates(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/a.c")
	declA := f.function("alpha", "/src/gen.h", 1, 1, false)
	defA := f.function("alpha", "/src/a.c", 2, 2, true)
	f.arena.Get(declA).Definition = defA

	f.unit("/src/b.c")
	declB := f.function("beta", "/src/gen.h", 1, 1, false)

	table, err := f.build()
	require.NoError(t, err)

	b, _ := table.Descriptor(declB)
	assert.Empty(t, b.Definitions)
}

func TestMerge_MissingLocation(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	e := baseEntity(frontend.KindFunction, "ghost", "", 0, 0)
	e.Location = frontend.Location{}
	e.IsDeclaration = true
	f.top(e)

	table, err := BuildTable(f.arena, f.units, nil)
	require.NoError(t, err)

	err = Merge(table)
	require.Error(t, err)

	var missing *MissingLocationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ghost", missing.Name)
	assert.Contains(t, err.Error(), "ghost")
}
