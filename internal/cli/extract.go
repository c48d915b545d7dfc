package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cshake/internal/graph"
	"github.com/mvp-joe/cshake/internal/shaker"
)

var (
	extractFlags shakeFlags
	quietFlag    bool
	watchFlag    bool
	dotFile      string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [sources...]",
	Short: "Write the minimal source tree reachable from the entry symbols",
	Long: `Extract parses every translation unit, computes everything the entry symbols
transitively need and writes exactly those source lines into the output
directory, mirroring the layout under the source root.

Sources may be files, directories or globs relative to the source root. With
none given, the configured sources are used; if those are empty, every *.c file
under the source root is parsed.

Examples:
  # Keep what main needs, writing to ./shaken
  cshake extract

  # Several entry points, custom output
  cshake extract -e main -e fuzz_target -o out/min

  # Only some sources, with an include directory
  cshake extract src/main.c "lib/**/*.c" -I include

  # Re-extract whenever a .c or .h file changes
  cshake extract --watch

  # Also write the dependency graph for Graphviz
  cshake extract --dot deps.dot
`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractFlags.register(extractCmd)
	extractCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	extractCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and re-extract")
	extractCmd.Flags().StringVar(&dotFile, "dot", "", "write the extracted dependency graph in DOT format to this file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	dir, err := resolveProjectDir()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(dir, &extractFlags, cmd.Flags().Changed, args)
	if err != nil {
		return err
	}

	s := shaker.New(shaker.OptionsFromConfig(cfg), shaker.WithProgress(NewCLIProgressReporter(quietFlag)))

	if watchFlag {
		if !quietFlag {
			log.Printf("Watching %s for changes (Ctrl+C to stop)", cfg.Paths.SourceRoot)
		}
		err := s.Watch(ctx, cfg.Watch.Debounce, func(_ *shaker.Result, err error) {
			if err != nil && ctx.Err() == nil {
				log.Printf("Extraction failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("watch mode failed: %w", err)
		}
		if !quietFlag {
			log.Println("Watch mode stopped")
		}
		return nil
	}

	a, err := s.Analyze(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		return err
	}
	if _, err := s.Write(a); err != nil {
		return err
	}

	if dotFile != "" {
		if err := writeDOT(a, dotFile); err != nil {
			return err
		}
		if !quietFlag {
			log.Printf("Dependency graph written to %s", dotFile)
		}
	}
	return nil
}

// writeDOT renders the dependency graph of a to path.
func writeDOT(a *shaker.Analysis, path string) error {
	dg, err := graph.NewDependencyGraph(a.Table, a.Extraction)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create DOT file: %w", err)
	}
	if err := dg.WriteDOT(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
