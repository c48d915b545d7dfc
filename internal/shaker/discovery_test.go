package shaker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for SourceDiscovery:
// - No sources means every *.c file under the root, at any depth
// - Explicit files are always included, even when they are not *.c
// - Directory sources contribute only the *.c files beneath them
// - Glob sources match relative to the root
// - Ignore patterns and .gitignore entries prune files and directories
// - Excluded directories (the output tree) and .cshake are never walked
// - Results are absolute, sorted and deduplicated
// - Invalid patterns are rejected at construction

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func discover(t *testing.T, root string, sources, ignore []string, gitignore bool, excluded ...string) []string {
	t.Helper()
	sd, err := NewSourceDiscovery(root, sources, ignore, gitignore, excluded...)
	require.NoError(t, err)
	files, err := sd.Discover()
	require.NoError(t, err)

	rel := make([]string, len(files))
	for i, f := range files {
		require.True(t, filepath.IsAbs(f))
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel[i] = filepath.ToSlash(r)
	}
	return rel
}

func discoveryTree(t *testing.T) string {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.c":           "",
		"main.h":           "",
		"lib/util.c":       "",
		"lib/deep/more.c":  "",
		"tests/test_one.c": "",
		"build/gen.c":      "",
		"shaken/main.c":    "",
		".cshake/x.c":      "",
		"vendor/table.inc": "",
	})
	return root
}

func TestDiscover_DefaultsToAllCFiles(t *testing.T) {
	t.Parallel()

	root := discoveryTree(t)
	got := discover(t, root, nil, nil, false, filepath.Join(root, "shaken"))
	assert.Equal(t, []string{"build/gen.c", "lib/deep/more.c", "lib/util.c", "main.c", "tests/test_one.c"}, got)
}

func TestDiscover_ExplicitSources(t *testing.T) {
	t.Parallel()

	root := discoveryTree(t)

	t.Run("files", func(t *testing.T) {
		t.Parallel()
		got := discover(t, root, []string{"main.c", "vendor/table.inc", "main.c"}, nil, false)
		assert.Equal(t, []string{"main.c", "vendor/table.inc"}, got)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		got := discover(t, root, []string{"lib"}, nil, false)
		assert.Equal(t, []string{"lib/deep/more.c", "lib/util.c"}, got)
	})

	t.Run("glob", func(t *testing.T) {
		t.Parallel()
		got := discover(t, root, []string{"lib/*.c"}, nil, false)
		assert.Equal(t, []string{"lib/util.c"}, got)
	})

	t.Run("mixed", func(t *testing.T) {
		t.Parallel()
		got := discover(t, root, []string{"main.c", "lib/**/*.c"}, nil, false)
		assert.Equal(t, []string{"lib/deep/more.c", "main.c"}, got)
	})
}

func TestDiscover_IgnoreAndExclusion(t *testing.T) {
	t.Parallel()

	root := discoveryTree(t)
	got := discover(t, root, nil, []string{"build/**", "tests/**"}, false, filepath.Join(root, "shaken"))
	assert.Equal(t, []string{"lib/deep/more.c", "lib/util.c", "main.c"}, got)
}

func TestDiscover_Gitignore(t *testing.T) {
	t.Parallel()

	root := discoveryTree(t)
	writeFiles(t, root, map[string]string{".gitignore": "lib/deep/\nbuild\n"})

	got := discover(t, root, nil, nil, true, filepath.Join(root, "shaken"))
	assert.Equal(t, []string{"lib/util.c", "main.c", "tests/test_one.c"}, got)

	got = discover(t, root, nil, nil, false, filepath.Join(root, "shaken"))
	assert.Contains(t, got, "build/gen.c")
}

func TestNewSourceDiscovery_InvalidPatterns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	_, err := NewSourceDiscovery(root, []string{"src/[.c"}, nil, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid source pattern")

	_, err = NewSourceDiscovery(root, nil, []string{"tests/[unclosed"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ignore pattern")
}
