package graph

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/cshake/internal/frontend"
)

// ErrNoEntrySymbols indicates none of the requested entry names matched a
// table key.
var ErrNoEntrySymbols = errors.New("no entry symbols found")

// MissingLocationError reports a declaration the merger cannot key because
// the front end gave it no source location.
type MissingLocationError struct {
	Name string
	Kind frontend.Kind
}

func (e *MissingLocationError) Error() string {
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s %s has no source location", e.Kind, name)
}

// GraphConsistencyError reports a dequeued entity that should carry a
// descriptor but does not.
type GraphConsistencyError struct {
	Name     string
	Kind     frontend.Kind
	Location frontend.Location
}

func (e *GraphConsistencyError) Error() string {
	return fmt.Sprintf("graph consistency violation: %s %s at %s has no descriptor", e.Kind, e.Name, e.Location)
}
