// Package shaker runs the whole extraction pipeline: discover translation
// units, parse them into one arena, build and merge the global symbol table,
// take the closure of the entry symbols and write the minimized tree.
package shaker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mvp-joe/cshake/internal/config"
	"github.com/mvp-joe/cshake/internal/frontend"
	"github.com/mvp-joe/cshake/internal/graph"
	"github.com/mvp-joe/cshake/internal/paths"
	"github.com/mvp-joe/cshake/internal/reconstruct"
)

// ErrNoSources indicates discovery found no translation unit to parse.
var ErrNoSources = errors.New("no source files found")

// Options describes one extraction. Relative paths resolve against the
// working directory; Sources and Ignore entries resolve against SourceRoot.
type Options struct {
	SourceRoot        string
	Sources           []string
	Ignore            []string
	RespectGitignore  bool
	EntrySymbols      []string
	OutputDir         string
	IncludeDirs       []string
	SystemIncludeDirs []string
}

// OptionsFromConfig maps a resolved configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SourceRoot:        cfg.Paths.SourceRoot,
		Sources:           cfg.Paths.Sources,
		Ignore:            cfg.Paths.Ignore,
		RespectGitignore:  cfg.Paths.RespectGitignore,
		EntrySymbols:      cfg.Extract.EntrySymbols,
		OutputDir:         cfg.Extract.OutputDir,
		IncludeDirs:       cfg.Include.Dirs,
		SystemIncludeDirs: cfg.Include.SystemDirs,
	}
}

// Option configures a Shaker.
type Option func(*Shaker)

// WithProgress configures progress reporting.
func WithProgress(progress ProgressReporter) Option {
	return func(s *Shaker) {
		if progress != nil {
			s.progress = progress
		}
	}
}

// Shaker extracts the minimal source subset reachable from entry symbols.
type Shaker struct {
	opts     Options
	progress ProgressReporter
}

// New creates a Shaker for opts.
func New(opts Options, options ...Option) *Shaker {
	s := &Shaker{opts: opts, progress: &NoOpProgressReporter{}}
	for _, o := range options {
		o(s)
	}
	return s
}

// Analysis is the in-memory result of the pipeline up to extraction.
type Analysis struct {
	Root       paths.CanonicalPath
	Sources    []string
	Units      []*frontend.TranslationUnit
	Table      *graph.Table
	Extraction *graph.Extraction

	started time.Time
}

// Result summarizes one run.
type Result struct {
	Sources   int
	Entities  int
	Keys      int
	Extracted int
	Written   []string
	Verbatim  int
	Duration  time.Duration

	// Unresolved lists extracted include directives whose target was not found.
	Unresolved []string

	// Unmatched lists entry symbols no translation unit defines.
	Unmatched []string
}

// Analyze parses every source and computes the extraction, without writing.
func (s *Shaker) Analyze(ctx context.Context) (*Analysis, error) {
	start := time.Now()
	cache := paths.NewCache()
	root, err := cache.Canonical(s.opts.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}

	discovery, err := NewSourceDiscovery(root.String(), s.opts.Sources, s.opts.Ignore, s.opts.RespectGitignore, outputPath(cache, s.opts.OutputDir))
	if err != nil {
		return nil, err
	}
	sources, err := discovery.Discover()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoSources, root)
	}

	s.progress.OnParseStart(len(sources))

	arena := frontend.NewArena()
	parser := frontend.NewParser(arena, frontend.Options{
		IncludeDirs:       s.opts.IncludeDirs,
		SystemIncludeDirs: s.opts.SystemIncludeDirs,
	})

	units := make([]*frontend.TranslationUnit, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		unit, err := parser.ParseTranslationUnit(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse translation unit: %w", err)
		}
		units = append(units, unit)
		s.progress.OnFileParsed(src)
	}
	s.progress.OnParseComplete(arena.Len(), time.Since(start))

	table, err := graph.BuildTable(arena, units, cache)
	if err != nil {
		return nil, err
	}
	graph.NewAnalyzer(table).AnalyzeAll()
	if err := graph.Merge(table); err != nil {
		return nil, fmt.Errorf("failed to merge declarations: %w", err)
	}

	extraction, err := graph.Extract(table, s.opts.EntrySymbols)
	if err != nil {
		return nil, err
	}
	s.progress.OnExtracted(extraction.Len(), extraction.Unmatched)

	return &Analysis{
		Root:       root,
		Sources:    sources,
		Units:      units,
		Table:      table,
		Extraction: extraction,
		started:    start,
	}, nil
}

// outputPath returns the output directory as discovery sees it: canonical
// when it already exists, absolute otherwise.
func outputPath(cache *paths.Cache, dir string) string {
	if dir == "" {
		return ""
	}
	if p, err := cache.Canonical(dir); err == nil {
		return p.String()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// Run performs a full extraction and writes the minimized tree to OutputDir.
func (s *Shaker) Run(ctx context.Context) (*Result, error) {
	a, err := s.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	return s.Write(a)
}

// Write plans and writes the minimized tree for a previous Analyze.
func (s *Shaker) Write(a *Analysis) (*Result, error) {
	plan, err := reconstruct.NewPlanner(a.Table).Plan(a.Extraction, a.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to plan output: %w", err)
	}

	normalizer := paths.NewNormalizer(a.Table.Cache(), a.Table.SystemIncludes)
	written, err := reconstruct.NewWriter(a.Root, s.opts.OutputDir, normalizer.IsSystem).Write(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	result := &Result{
		Sources:    len(a.Sources),
		Entities:   a.Table.Arena().Len(),
		Keys:       len(a.Table.Keys()),
		Extracted:  a.Extraction.Len(),
		Written:    written,
		Verbatim:   len(plan.Verbatim),
		Unresolved: plan.Unresolved,
		Unmatched:  a.Extraction.Unmatched,
		Duration:   time.Since(a.started),
	}
	s.progress.OnWritten(result)
	return result, nil
}
