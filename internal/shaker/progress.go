package shaker

import "time"

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnParseStart is called before the first translation unit is parsed.
	OnParseStart(totalFiles int)

	// OnFileParsed is called after each translation unit is parsed.
	OnFileParsed(fileName string)

	// OnParseComplete is called once every unit is parsed.
	OnParseComplete(entities int, duration time.Duration)

	// OnExtracted is called once the closure of the entry symbols is known.
	OnExtracted(symbols int, unmatched []string)

	// OnWritten is called after the output tree is written.
	OnWritten(result *Result)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnParseStart(totalFiles int)                          {}
func (n *NoOpProgressReporter) OnFileParsed(fileName string)                         {}
func (n *NoOpProgressReporter) OnParseComplete(entities int, duration time.Duration) {}
func (n *NoOpProgressReporter) OnExtracted(symbols int, unmatched []string)          {}
func (n *NoOpProgressReporter) OnWritten(result *Result)                             {}
