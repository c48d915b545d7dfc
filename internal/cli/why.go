package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cshake/internal/frontend"
	"github.com/mvp-joe/cshake/internal/graph"
	"github.com/mvp-joe/cshake/internal/shaker"
)

var whyFlags shakeFlags

// whyCmd represents the why command
var whyCmd = &cobra.Command{
	Use:   "why <symbol>",
	Short: "Explain why a symbol is part of the extraction",
	Long: `Why prints the shortest chain of dependencies leading from an entry symbol to
the named symbol, one entity per line. Nothing is written.

Examples:
  cshake why helper
  cshake why SQUARE -e fuzz_target
`,
	Args: cobra.ExactArgs(1),
	RunE: runWhy,
}

func init() {
	rootCmd.AddCommand(whyCmd)
	whyFlags.register(whyCmd)
}

func runWhy(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	dir, err := resolveProjectDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(dir, &whyFlags, cmd.Flags().Changed, nil)
	if err != nil {
		return err
	}

	a, err := shaker.New(shaker.OptionsFromConfig(cfg)).Analyze(ctx)
	if err != nil {
		return err
	}
	return explain(cmd.OutOrStdout(), a, args[0])
}

// explain writes the dependency chain from an entry symbol to name.
func explain(w io.Writer, a *shaker.Analysis, name string) error {
	dg, err := graph.NewDependencyGraph(a.Table, a.Extraction)
	if err != nil {
		return err
	}

	path, err := dg.PathTo(name)
	if err != nil {
		return err
	}

	arena := a.Table.Arena()
	fmt.Fprintf(w, "%s is reachable from %s:\n", name, arena.Get(path[0]).Name)
	for i, id := range path {
		e := arena.Get(id)
		fmt.Fprintf(w, "  %d. %s (%s) %s\n", i+1, e.Name, describeKind(e), relLocation(a, e))
	}
	return nil
}

func describeKind(e *frontend.Entity) string {
	switch {
	case e.Kind.IsMacroOrInclude():
		return e.Kind.String()
	case e.IsDefinition:
		return e.Kind.String() + " definition"
	case e.IsDeclaration:
		return e.Kind.String() + " declaration"
	}
	return e.Kind.String()
}

// relLocation prints a location relative to the source root when possible.
func relLocation(a *shaker.Analysis, e *frontend.Entity) string {
	p, err := a.Table.Cache().Canonical(e.Location.File)
	if err != nil {
		return e.Location.String()
	}
	rel, ok := p.Rel(a.Root)
	if !ok {
		return e.Location.String()
	}
	return fmt.Sprintf("%s:%d", rel, e.Location.Line)
}
