package frontend

import (
	"errors"
	"fmt"
)

// ErrNoSyntaxTree indicates tree-sitter produced no tree for a source file.
var ErrNoSyntaxTree = errors.New("no syntax tree produced")

// ParseError reports a source file the front end could not turn into a syntax tree.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
