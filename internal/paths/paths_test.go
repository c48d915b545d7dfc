package paths

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Path Normalizer:
// - Canonical resolves relative spellings and symlinks to one path
// - Canonical fails for missing files
// - Rel reports paths outside the root
// - Include prefers the system include registry by bare filename
// - Include uses the front end's resolved target when present
// - Include joins the spelling onto the directive's directory otherwise
// - Include returns ErrUnresolvableInclude for missing targets

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCanonical_ResolvesSpellingsAndSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "inc", "util.h")
	writeFile(t, header, "int add(int, int);\n")

	link := filepath.Join(dir, "link.h")
	require.NoError(t, os.Symlink(header, link))

	direct, err := Canonical(header)
	require.NoError(t, err)

	dotted, err := Canonical(filepath.Join(dir, "inc", "..", "inc", "util.h"))
	require.NoError(t, err)

	linked, err := Canonical(link)
	require.NoError(t, err)

	assert.Equal(t, direct, dotted)
	assert.Equal(t, direct, linked)
	assert.Equal(t, "util.h", direct.Base())
}

func TestCanonical_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Canonical(filepath.Join(t.TempDir(), "missing.h"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCanonicalPath_Rel(t *testing.T) {
	t.Parallel()

	root := CanonicalPath("/src/project")

	rel, ok := CanonicalPath("/src/project/lib/a.c").Rel(root)
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("lib", "a.c"), rel)

	_, ok = CanonicalPath("/src/other/a.c").Rel(root)
	assert.False(t, ok)

	_, ok = CanonicalPath("/src/project-two/a.c").Rel(root)
	assert.False(t, ok)
}

func TestNormalizer_Include(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mainFile := filepath.Join(dir, "main.c")
	local := filepath.Join(dir, "util.h")
	vendored := filepath.Join(dir, "vendor", "lib.h")
	system := filepath.Join(dir, "sys", "stdio.h")
	writeFile(t, mainFile, "int main(void) { return 0; }\n")
	writeFile(t, local, "int add(int, int);\n")
	writeFile(t, vendored, "int lib(void);\n")
	writeFile(t, system, "int printf(const char *, ...);\n")

	cache := NewCache()
	systemPath, err := cache.Canonical(system)
	require.NoError(t, err)

	n := NewNormalizer(cache, map[string]CanonicalPath{"stdio.h": systemPath})

	tests := []struct {
		name      string
		directive Directive
		want      string
	}{
		{
			name:      "system header by bare filename",
			directive: Directive{Name: "stdio.h", File: mainFile},
			want:      system,
		},
		{
			name:      "relative to directive directory",
			directive: Directive{Name: "util.h", File: mainFile},
			want:      local,
		},
		{
			name:      "front end target",
			directive: Directive{Name: "lib.h", File: mainFile, Target: vendored},
			want:      vendored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Include(tt.directive)
			require.NoError(t, err)

			want, err := Canonical(tt.want)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	assert.True(t, n.IsSystem(systemPath))
	assert.False(t, n.IsSystem(CanonicalPath(local)))
}

func TestNormalizer_Unresolvable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	n := NewNormalizer(nil, nil)

	_, err := n.Include(Directive{Name: "missing.h", File: filepath.Join(dir, "main.c")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableInclude)
}
