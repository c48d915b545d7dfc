package shaker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mvp-joe/cshake/internal/watcher"
)

// RunFunc receives the outcome of every run made by Watch.
type RunFunc func(result *Result, err error)

// Watch runs the extraction once, then again after every debounced batch of
// .c/.h changes under the source root and include directories, until ctx is
// cancelled. A failed run is reported to fn and does not stop watching.
func (s *Shaker) Watch(ctx context.Context, debounce time.Duration, fn RunFunc) error {
	if fn == nil {
		fn = func(*Result, error) {}
	}

	dirs := []string{s.opts.SourceRoot}
	for _, dir := range s.opts.IncludeDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	w, err := watcher.NewFileWatcher(dirs, watcher.Options{
		Debounce: debounce,
		Exclude:  []string{s.opts.OutputDir},
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	fn(s.Run(ctx))

	err = w.Start(ctx, func(files []string) {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Detected %d changed file(s), re-extracting", len(files))
		fn(s.Run(ctx))
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	<-ctx.Done()
	return nil
}
