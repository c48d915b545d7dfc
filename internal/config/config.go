// Package config provides configuration loading for cshake.
//
// Configuration is read from .cshake/config.yml under the project root, with
// CSHAKE_* environment variables and command-line flags layered on top:
//
//  1. Command-line flags (applied by the caller)
//  2. Environment variables (CSHAKE_EXTRACT_OUTPUT_DIR, ...)
//  3. Project config (.cshake/config.yml)
//  4. Built-in defaults
package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete cshake configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Include IncludeConfig `yaml:"include" mapstructure:"include"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
}

// PathsConfig defines which translation units are parsed.
type PathsConfig struct {
	SourceRoot       string   `yaml:"source_root" mapstructure:"source_root"`             // root the output tree mirrors
	Sources          []string `yaml:"sources" mapstructure:"sources"`                     // files, directories or globs; empty means every *.c
	Ignore           []string `yaml:"ignore" mapstructure:"ignore"`                       // glob patterns to skip
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"` // also skip paths in the root .gitignore
}

// ExtractConfig defines what is extracted and where it goes.
type ExtractConfig struct {
	EntrySymbols []string `yaml:"entry_symbols" mapstructure:"entry_symbols"`
	OutputDir    string   `yaml:"output_dir" mapstructure:"output_dir"`
}

// IncludeConfig defines include search paths.
type IncludeConfig struct {
	Dirs       []string `yaml:"dirs" mapstructure:"dirs"`               // like -I
	SystemDirs []string `yaml:"system_dirs" mapstructure:"system_dirs"` // headers here are never emitted
}

// WatchConfig configures `extract --watch`.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			SourceRoot: ".",
			Sources:    []string{},
			Ignore: []string{
				".git/**",
				".cshake/**",
				"build/**",
			},
			RespectGitignore: true,
		},
		Extract: ExtractConfig{
			EntrySymbols: []string{"main"},
			OutputDir:    "shaken",
		},
		Include: IncludeConfig{
			Dirs:       []string{},
			SystemDirs: []string{"/usr/include", "/usr/local/include"},
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Resolve makes every relative path in c absolute against baseDir.
// Source entries are left alone: they may be globs relative to the source root.
func (c *Config) Resolve(baseDir string) {
	c.Paths.SourceRoot = absFrom(baseDir, c.Paths.SourceRoot)
	c.Extract.OutputDir = absFrom(baseDir, c.Extract.OutputDir)
	for i, dir := range c.Include.Dirs {
		c.Include.Dirs[i] = absFrom(baseDir, dir)
	}
	for i, dir := range c.Include.SystemDirs {
		c.Include.SystemDirs[i] = absFrom(baseDir, dir)
	}
}

func absFrom(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
