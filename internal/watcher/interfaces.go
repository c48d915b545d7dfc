package watcher

import "context"

// FileWatcher monitors C source trees and reports debounced batches of changed files.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch.
	// The callback runs on the watch goroutine; events arriving meanwhile are
	// batched for the next call.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error
}

// DefaultExtensions are the file types that can change an extraction.
var DefaultExtensions = []string{".c", ".h"}
