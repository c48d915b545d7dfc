package reconstruct

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/mvp-joe/cshake/internal/frontend"
	"github.com/mvp-joe/cshake/internal/graph"
	"github.com/mvp-joe/cshake/internal/paths"
)

// LineRange is an inclusive, 1-indexed span of source lines.
type LineRange struct {
	Start int
	End   int
}

// FilePlan describes one minimized output file.
type FilePlan struct {
	Path paths.CanonicalPath
	// Ranges are disjoint and ascending.
	Ranges []LineRange
}

// Plan is everything the writer needs to produce the output tree.
type Plan struct {
	// Files are the minimized files, ordered by path.
	Files []FilePlan
	// Verbatim are unparsable include targets copied byte for byte, ordered by path.
	Verbatim []paths.CanonicalPath
	// Unresolved lists extracted directives whose target could not be found.
	Unresolved []string
}

// symbolRef orders a symbol within its file by start line, then discovery order.
type symbolRef struct {
	id    frontend.ID
	start int
	end   int
}

// Planner groups extracted entities by file and decides what gets written.
type Planner struct {
	table      *graph.Table
	arena      *frontend.Arena
	cache      *paths.Cache
	normalizer *paths.Normalizer
}

// NewPlanner creates a planner over a merged table.
func NewPlanner(t *graph.Table) *Planner {
	return &Planner{
		table:      t,
		arena:      t.Arena(),
		cache:      t.Cache(),
		normalizer: paths.NewNormalizer(t.Cache(), t.SystemIncludes),
	}
}

// Plan computes the output plan for extraction x over the given sources.
func (p *Planner) Plan(x *graph.Extraction, sources []string) (*Plan, error) {
	symbols := make(map[paths.CanonicalPath][]symbolRef)
	var extractedDirectives []frontend.ID

	for _, id := range x.Symbols {
		e := p.arena.Get(id)
		if e.Kind == frontend.KindInclusionDirective {
			extractedDirectives = append(extractedDirectives, id)
			continue
		}
		if !e.HasLocation() {
			continue
		}
		file, err := p.cache.Canonical(e.Location.File)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p.arena.Describe(id), err)
		}
		symbols[file] = append(symbols[file], symbolRef{id: id, start: e.StartLine, end: e.EndLine})
	}

	for file := range symbols {
		refs := symbols[file]
		sort.SliceStable(refs, func(i, j int) bool {
			if refs[i].start != refs[j].start {
				return refs[i].start < refs[j].start
			}
			return refs[i].id < refs[j].id
		})
	}

	plan := &Plan{}
	unparsable := make(map[paths.CanonicalPath]bool)
	for _, id := range extractedDirectives {
		target, err := p.include(id)
		if err != nil {
			if errors.Is(err, paths.ErrUnresolvableInclude) {
				log.Printf("Warning: %v", err)
				plan.Unresolved = append(plan.Unresolved, p.arena.Describe(id))
				continue
			}
			return nil, err
		}
		if _, ok := symbols[target]; !ok {
			unparsable[target] = true
		}
	}

	includes := make(map[paths.CanonicalPath][]frontend.ID)
	process := make(map[paths.CanonicalPath]bool)
	for _, src := range sources {
		file, err := p.cache.Canonical(src)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source: %w", err)
		}
		process[file] = true
	}
	for _, id := range p.table.Includes {
		e := p.arena.Get(id)
		file, err := p.cache.Canonical(e.Location.File)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p.arena.Describe(id), err)
		}
		includes[file] = append(includes[file], id)

		if target, err := p.include(id); err == nil {
			process[target] = true
		}
	}

	for file := range process {
		if unparsable[file] || p.normalizer.IsSystem(file) {
			continue
		}
		refs, ok := symbols[file]
		if !ok {
			continue
		}

		var ranges []LineRange
		for _, id := range includes[file] {
			target, err := p.include(id)
			if err != nil || unparsable[target] {
				continue
			}
			if _, ok := symbols[target]; !ok {
				continue
			}
			e := p.arena.Get(id)
			ranges = append(ranges, LineRange{Start: e.StartLine, End: e.EndLine})
		}
		for _, ref := range refs {
			ranges = append(ranges, LineRange{Start: ref.start, End: ref.end})
		}

		plan.Files = append(plan.Files, FilePlan{Path: file, Ranges: union(ranges)})
	}

	for target := range unparsable {
		plan.Verbatim = append(plan.Verbatim, target)
	}

	sort.Slice(plan.Files, func(i, j int) bool { return plan.Files[i].Path < plan.Files[j].Path })
	sort.Slice(plan.Verbatim, func(i, j int) bool { return plan.Verbatim[i] < plan.Verbatim[j] })
	sort.Strings(plan.Unresolved)
	return plan, nil
}

// include normalizes the target of directive id.
func (p *Planner) include(id frontend.ID) (paths.CanonicalPath, error) {
	e := p.arena.Get(id)
	return p.normalizer.Include(paths.Directive{
		Name:   e.Name,
		File:   e.Location.File,
		Target: e.IncludeTarget,
	})
}

// union merges overlapping and adjacent ranges into ascending disjoint ones.
func union(ranges []LineRange) []LineRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]LineRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := []LineRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
