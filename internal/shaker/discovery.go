package shaker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// SourceDiscovery finds the translation units of a run.
type SourceDiscovery struct {
	rootDir        string
	files          []string // explicit source files
	dirs           []string // directories whose *.c files are all sources
	patterns       []compiledPattern
	ignorePatterns []compiledPattern
	gitignore      *ignore.GitIgnore
	excluded       []string
}

// NewSourceDiscovery creates a discovery rooted at rootDir.
//
// Each source is a file, a directory or a glob relative to rootDir. With no
// sources, every *.c file beneath rootDir is a source. excluded directories
// (such as the output directory) are never walked.
func NewSourceDiscovery(rootDir string, sources, ignorePatterns []string, respectGitignore bool, excluded ...string) (*SourceDiscovery, error) {
	sd := &SourceDiscovery{rootDir: rootDir}

	if len(sources) == 0 {
		sources = []string{"**/*.c"}
	}

	for _, src := range sources {
		path := src
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, src)
		}

		if info, err := os.Stat(path); err == nil {
			if info.IsDir() {
				sd.dirs = append(sd.dirs, path)
			} else {
				sd.files = append(sd.files, path)
			}
			continue
		}

		g, err := glob.Compile(filepath.ToSlash(src), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", src, err)
		}
		sd.patterns = append(sd.patterns, compiledPattern{pattern: src, glob: g})
	}

	for _, pattern := range ignorePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		sd.ignorePatterns = append(sd.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	if respectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(rootDir, ".gitignore")); err == nil {
			sd.gitignore = gi
		}
	}

	for _, dir := range excluded {
		if dir != "" {
			sd.excluded = append(sd.excluded, filepath.Clean(dir))
		}
	}

	return sd, nil
}

// Discover returns the absolute paths of every source, sorted and deduplicated.
// Explicitly named files are always included.
func (sd *SourceDiscovery) Discover() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil && !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
	}

	for _, file := range sd.files {
		add(file)
	}

	if len(sd.dirs) > 0 || len(sd.patterns) > 0 {
		err := filepath.WalkDir(sd.rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(sd.rootDir, path)
			if err != nil {
				return err
			}
			relPath = filepath.ToSlash(relPath)

			if d.IsDir() {
				if relPath != "." && (sd.isExcluded(path) || sd.shouldIgnore(relPath, true)) {
					return filepath.SkipDir
				}
				return nil
			}

			if sd.shouldIgnore(relPath, false) {
				return nil
			}

			if sd.inSourceDir(path) || sd.matchesAnyPattern(relPath) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to discover sources: %w", err)
		}
	}

	sort.Strings(out)
	return out, nil
}

func (sd *SourceDiscovery) isExcluded(path string) bool {
	for _, dir := range sd.excluded {
		if filepath.Clean(path) == dir {
			return true
		}
	}
	return false
}

func (sd *SourceDiscovery) inSourceDir(path string) bool {
	if filepath.Ext(path) != ".c" {
		return false
	}
	for _, dir := range sd.dirs {
		if rel, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// shouldIgnore checks if a path matches any ignore pattern or the gitignore.
func (sd *SourceDiscovery) shouldIgnore(relPath string, isDir bool) bool {
	if strings.HasPrefix(relPath, ".cshake/") || relPath == ".cshake" {
		return true
	}

	for _, cp := range sd.ignorePatterns {
		if cp.glob.Match(relPath) {
			return true
		}
		// "build" should match pattern "build/**"
		if isDir && cp.glob.Match(relPath+"/**") {
			return true
		}
	}

	if sd.gitignore != nil {
		if sd.gitignore.MatchesPath(relPath) || (isDir && sd.gitignore.MatchesPath(relPath+"/")) {
			return true
		}
	}

	return false
}

// matchesAnyPattern checks if a path matches any source pattern.
func (sd *SourceDiscovery) matchesAnyPattern(relPath string) bool {
	for _, cp := range sd.patterns {
		if cp.glob.Match(relPath) {
			return true
		}
	}

	// "**/*.c" should match both "main.c" and "lib/util.c"
	if !strings.Contains(relPath, "/") {
		for _, cp := range sd.patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				if simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && simplified.Match(relPath) {
					return true
				}
			}
		}
	}

	return false
}
