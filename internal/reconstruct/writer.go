package reconstruct

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/mvp-joe/cshake/internal/paths"
)

// ErrOutsideSourceRoot indicates a file to be written does not live under the
// source root, so it has no place in the mirrored output tree.
var ErrOutsideSourceRoot = errors.New("file is outside the source root")

// Writer emits a plan into an output directory mirroring the source root.
type Writer struct {
	sourceRoot paths.CanonicalPath
	outputDir  string
	isSystem   func(paths.CanonicalPath) bool
}

// NewWriter creates a writer. isSystem may be nil.
func NewWriter(sourceRoot paths.CanonicalPath, outputDir string, isSystem func(paths.CanonicalPath) bool) *Writer {
	if isSystem == nil {
		isSystem = func(paths.CanonicalPath) bool { return false }
	}
	return &Writer{sourceRoot: sourceRoot, outputDir: outputDir, isSystem: isSystem}
}

// Write produces every minimized file and verbatim copy of plan, returning
// the written output paths in order. Existing files are overwritten; nothing
// else in the output directory is touched.
func (w *Writer) Write(plan *Plan) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string

	for _, file := range plan.Files {
		target, err := w.target(file.Path)
		if err != nil {
			return written, err
		}

		source, err := os.ReadFile(file.Path.String())
		if err != nil {
			return written, fmt.Errorf("failed to read source file: %w", err)
		}

		if err := writeFile(target, slice(source, file.Ranges)); err != nil {
			return written, err
		}
		written = append(written, target)
	}

	for _, src := range plan.Verbatim {
		if w.isSystem(src) {
			continue
		}

		source, err := os.ReadFile(src.String())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Printf("Warning: include target %s does not exist, skipping copy", src)
				continue
			}
			return written, fmt.Errorf("failed to read include target: %w", err)
		}

		target, err := w.target(src)
		if err != nil {
			return written, err
		}
		if err := writeFile(target, source); err != nil {
			return written, err
		}
		written = append(written, target)
	}

	return written, nil
}

// target maps a source file to its mirrored output path.
func (w *Writer) target(file paths.CanonicalPath) (string, error) {
	rel, ok := file.Rel(w.sourceRoot)
	if !ok {
		return "", fmt.Errorf("%w: %s (root %s)", ErrOutsideSourceRoot, file, w.sourceRoot)
	}
	return filepath.Join(w.outputDir, rel), nil
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// splitLines splits source after each '\n', keeping every terminator.
func splitLines(source []byte) [][]byte {
	var lines [][]byte
	for len(source) > 0 {
		i := bytes.IndexByte(source, '\n')
		if i < 0 {
			lines = append(lines, source)
			break
		}
		lines = append(lines, source[:i+1])
		source = source[i+1:]
	}
	return lines
}

// slice concatenates the lines of source covered by ranges.
func slice(source []byte, ranges []LineRange) []byte {
	lines := splitLines(source)

	var out bytes.Buffer
	for _, r := range ranges {
		start := max(r.Start, 1)
		end := min(r.End, len(lines))
		for line := start; line <= end; line++ {
			out.Write(lines[line-1])
		}
	}
	return out.Bytes()
}
