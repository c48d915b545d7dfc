package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mvp-joe/cshake/internal/frontend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Symbol Table and Macro Index:
// - Declarations and definitions become keys with empty descriptors
// - Inclusion directives go to Includes, never to the keys
// - Macro definitions and expansions are not keys
// - System entities register their bare filename against the canonical path
// - Macro index range queries are inclusive on both ends
// - Entries sharing an expansion line are all kept in discovery order
// - System-header entities are left out of the macro index

func TestBuildTable_Keys(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	dir := f.directive("util.h", "/src/main.c", 1, "")
	def := f.macroDef("N", "/src/main.c", 2)
	proto := f.function("helper", "/src/main.c", 3, 3, false)
	mainFn := f.function("main", "/src/main.c", 4, 6, true)
	exp := f.expansion("N", "/src/main.c", 5, def)

	table, err := BuildTable(f.arena, f.units, nil)
	require.NoError(t, err)

	assert.Equal(t, []frontend.ID{proto, mainFn}, table.Keys())
	assert.Equal(t, []frontend.ID{dir}, table.Includes)
	assert.False(t, table.Has(def))
	assert.False(t, table.Has(exp))

	desc, ok := table.Descriptor(mainFn)
	require.True(t, ok)
	assert.Empty(t, desc.Deps)
	assert.Empty(t, desc.Definitions)

	assert.Empty(t, table.SystemIncludes)
}

func TestBuildTable_SystemIncludeRegistry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "include", "stdio.h")
	require.NoError(t, os.MkdirAll(filepath.Dir(header), 0755))
	require.NoError(t, os.WriteFile(header, []byte("int printf(const char *, ...);\n"), 0644))

	f := newUnitFixture()
	f.unit(filepath.Join(dir, "main.c"))
	id := f.function("printf", header, 1, 1, false)
	f.arena.Get(id).System = true

	table, err := BuildTable(f.arena, f.units, nil)
	require.NoError(t, err)

	require.Contains(t, table.SystemIncludes, "stdio.h")
	assert.Equal(t, "stdio.h", table.SystemIncludes["stdio.h"].Base())
}

func TestBuildTable_SystemHeaderMissing(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	id := f.function("printf", filepath.Join(t.TempDir(), "gone.h"), 1, 1, false)
	f.arena.Get(id).System = true

	_, err := BuildTable(f.arena, f.units, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMacroIndex_Range(t *testing.T) {
	t.Parallel()

	f := newUnitFixture()
	f.unit("/src/main.c")
	def := f.macroDef("A", "/src/main.c", 1)
	first := f.expansion("A", "/src/main.c", 4, def)
	second := f.expansion("B", "/src/main.c", 4, def)
	late := f.expansion("A", "/src/main.c", 9, def)
	early := f.expansion("A", "/src/main.c", 2, def)
	system := f.expansion("SYS", "/usr/include/x.h", 4, def)
	f.arena.Get(system).System = true
	f.function("main", "/src/main.c", 3, 10, true)

	index := BuildMacroIndex(f.arena, f.units[0])

	assert.Equal(t, 5, index.Len())
	assert.Equal(t, []frontend.ID{early, first, second}, index.Range(2, 4))
	assert.Equal(t, []frontend.ID{first, second}, index.Range(4, 4))
	assert.Equal(t, []frontend.ID{late}, index.Range(5, 9))
	assert.Empty(t, index.Range(10, 20))
	assert.Empty(t, index.Range(5, 4))
	assert.Equal(t, []frontend.ID{def, early, first, second, late}, index.All())
}
