package frontend

import "fmt"

// Arena is the append-only store of every entity created during one run.
// Entities are referenced by ID so descriptors may point at each other freely.
type Arena struct {
	entities []*Entity
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores a copy of e and returns its ID.
func (a *Arena) Add(e Entity) ID {
	id := ID(len(a.entities))
	e.ID = id
	a.entities = append(a.entities, &e)
	return id
}

// Get returns the entity for id, or nil when id is out of range.
func (a *Arena) Get(id ID) *Entity {
	if id < 0 || int(id) >= len(a.entities) {
		return nil
	}
	return a.entities[id]
}

// Len returns the number of stored entities.
func (a *Arena) Len() int {
	return len(a.entities)
}

// Describe renders id for diagnostics as "name (kind) at file:line:col".
func (a *Arena) Describe(id ID) string {
	e := a.Get(id)
	if e == nil {
		return fmt.Sprintf("<entity %d>", id)
	}
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s (%s) at %s", name, e.Kind, e.Location)
}
