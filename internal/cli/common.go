package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cshake/internal/config"
)

// shakeFlags are the configuration overrides shared by extract and why.
type shakeFlags struct {
	entries           []string
	output            string
	sourceRoot        string
	includeDirs       []string
	systemIncludeDirs []string
}

func (f *shakeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVarP(&f.entries, "entry", "e", nil, "entry symbols to keep (repeatable or comma separated)")
	flags.StringVarP(&f.output, "output", "o", "", "output directory for the minimized tree")
	flags.StringVar(&f.sourceRoot, "root", "", "source root the output tree mirrors")
	flags.StringSliceVarP(&f.includeDirs, "include-dir", "I", nil, "project include directory (repeatable)")
	flags.StringSliceVar(&f.systemIncludeDirs, "system-include-dir", nil, "system include directory whose headers are never emitted (repeatable)")
}

// apply layers the flags that were set, plus any positional sources, onto cfg.
func (f *shakeFlags) apply(cfg *config.Config, changed func(name string) bool, sources []string) {
	if changed("entry") {
		cfg.Extract.EntrySymbols = f.entries
	}
	if changed("output") {
		cfg.Extract.OutputDir = f.output
	}
	if changed("root") {
		cfg.Paths.SourceRoot = f.sourceRoot
	}
	if changed("include-dir") {
		cfg.Include.Dirs = f.includeDirs
	}
	if changed("system-include-dir") {
		cfg.Include.SystemDirs = f.systemIncludeDirs
	}
	if len(sources) > 0 {
		cfg.Paths.Sources = sources
	}
}

// loadConfig loads the project configuration, applies flag overrides,
// resolves paths against the project directory and validates the result.
func loadConfig(dir string, f *shakeFlags, changed func(name string) bool, sources []string) (*config.Config, error) {
	cfg, err := config.LoadConfigFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	f.apply(cfg, changed, sources)
	cfg.Resolve(dir)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}
