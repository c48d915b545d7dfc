package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/cshake/internal/shaker"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet    bool
	out      io.Writer
	parseBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to stderr.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet, out: os.Stderr}
}

func (c *CLIProgressReporter) OnParseStart(totalFiles int) {
	if c.quiet {
		return
	}
	if c.parseBar != nil {
		c.parseBar.Finish()
	}
	c.parseBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing translation units"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileParsed(fileName string) {
	if c.quiet {
		return
	}
	if c.parseBar != nil {
		c.parseBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnParseComplete(entities int, duration time.Duration) {
	if c.quiet {
		return
	}
	if c.parseBar != nil {
		c.parseBar.Finish()
		c.parseBar = nil
	}
	if verbose {
		log.Printf("Parsed %s entities in %.1fs", formatNumber(entities), duration.Seconds())
	}
}

func (c *CLIProgressReporter) OnExtracted(symbols int, unmatched []string) {
	if c.quiet {
		return
	}
	if verbose {
		log.Printf("Reachability closure holds %s entities", formatNumber(symbols))
	}
}

func (c *CLIProgressReporter) OnWritten(result *shaker.Result) {
	if c.quiet {
		return
	}

	fmt.Fprintf(c.out, "✓ Extraction complete: %s entities from %s translation units in %.1fs\n",
		formatNumber(result.Extracted), formatNumber(result.Sources), result.Duration.Seconds())
	fmt.Fprintf(c.out, "  Files written: %s (%d copied verbatim)\n", formatNumber(len(result.Written)), result.Verbatim)
	if len(result.Unmatched) > 0 {
		fmt.Fprintf(c.out, "  Entry symbols not found: %s\n", strings.Join(result.Unmatched, ", "))
	}
	if len(result.Unresolved) > 0 {
		fmt.Fprintf(c.out, "  Unresolved includes: %d\n", len(result.Unresolved))
	}
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
