package graph

import (
	"errors"
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/mvp-joe/cshake/internal/frontend"
)

// entryVertex is the synthetic root every entry symbol hangs off.
const entryVertex = frontend.NoEntity

// ErrNotExtracted indicates a symbol name has no extracted entity.
var ErrNotExtracted = errors.New("symbol was not extracted")

// DependencyGraph is the extracted subgraph, held as a directed graph from
// each entity to its deps and definitions.
type DependencyGraph struct {
	table      *Table
	extraction *Extraction
	g          graph.Graph[frontend.ID, frontend.ID]
}

// NewDependencyGraph materializes the edges between extracted entities.
func NewDependencyGraph(t *Table, x *Extraction) (*DependencyGraph, error) {
	g := graph.New(func(id frontend.ID) frontend.ID { return id }, graph.Directed())

	if err := g.AddVertex(entryVertex, graph.VertexAttribute("label", "<entry>"), graph.VertexAttribute("shape", "doublecircle")); err != nil {
		return nil, fmt.Errorf("failed to add entry vertex: %w", err)
	}

	for _, id := range x.Symbols {
		e := t.arena.Get(id)
		label := fmt.Sprintf("%s\\n%s:%d", displayName(e), e.Location.File, e.StartLine)
		if err := g.AddVertex(id, graph.VertexAttribute("label", label), graph.VertexAttribute("shape", shapeOf(e.Kind))); err != nil {
			return nil, fmt.Errorf("failed to add vertex %s: %w", t.arena.Describe(id), err)
		}
	}

	for _, root := range x.Roots {
		if err := g.AddEdge(entryVertex, root); err != nil {
			return nil, fmt.Errorf("failed to add entry edge to %s: %w", t.arena.Describe(root), err)
		}
	}

	for _, id := range x.Symbols {
		desc, ok := t.descriptors[id]
		if !ok {
			continue
		}
		for _, dep := range desc.Deps.Sorted() {
			if err := addEdge(g, id, dep, "dep"); err != nil {
				return nil, err
			}
		}
		for _, def := range desc.Definitions.Sorted() {
			if err := addEdge(g, id, def, "def"); err != nil {
				return nil, err
			}
		}
	}

	return &DependencyGraph{table: t, extraction: x, g: g}, nil
}

func addEdge(g graph.Graph[frontend.ID, frontend.ID], from, to frontend.ID, label string) error {
	if from == to {
		return nil
	}
	err := g.AddEdge(from, to, graph.EdgeAttribute("label", label))
	if err == nil || errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return nil
	}
	return fmt.Errorf("failed to add edge %d -> %d: %w", from, to, err)
}

// Order returns the number of entity vertices.
func (d *DependencyGraph) Order() int {
	return len(d.extraction.Symbols)
}

// PathTo returns the shortest chain of entities leading from an entry symbol
// to an extracted entity named name.
func (d *DependencyGraph) PathTo(name string) ([]frontend.ID, error) {
	var best []frontend.ID
	for _, id := range d.extraction.Symbols {
		if d.table.arena.Get(id).Name != name {
			continue
		}
		path, err := graph.ShortestPath(d.g, entryVertex, id)
		if err != nil {
			if errors.Is(err, graph.ErrTargetNotReachable) {
				continue
			}
			return nil, fmt.Errorf("failed to find path to %s: %w", name, err)
		}
		if best == nil || len(path) < len(best) {
			best = path
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotExtracted, name)
	}
	return best[1:], nil
}

// WriteDOT renders the graph in Graphviz DOT format.
func (d *DependencyGraph) WriteDOT(w io.Writer) error {
	if err := draw.DOT(d.g, w, draw.GraphAttribute("rankdir", "LR")); err != nil {
		return fmt.Errorf("failed to render dependency graph: %w", err)
	}
	return nil
}

func displayName(e *frontend.Entity) string {
	if e.Name == "" {
		return "<anonymous " + e.Kind.String() + ">"
	}
	return e.Name
}

func shapeOf(k frontend.Kind) string {
	switch k {
	case frontend.KindMacroDefinition, frontend.KindMacroExpansion:
		return "hexagon"
	case frontend.KindInclusionDirective:
		return "note"
	case frontend.KindType, frontend.KindTypedef:
		return "box3d"
	}
	return "box"
}
