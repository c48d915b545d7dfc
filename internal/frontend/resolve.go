package frontend

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// resolve binds definitions, declared types and subtree references for every
// pending node once all top-level names of the unit are known.
func (b *unitBuilder) resolve() {
	for _, p := range b.pending {
		switch p.role {
		case roleFunction, roleDeclaration:
			for _, id := range p.ids {
				e := b.arena.Get(id)
				e.Definition = b.ordinaryDefinition(e.Name)
				if e.Kind == KindVariable {
					e.TypeDecl = b.typeDeclaration(p.typeNode, p.file)
				}
			}
		case roleTypedef:
			underlying := b.typeDeclaration(p.typeNode, p.file)
			for _, id := range p.ids {
				b.arena.Get(id).Underlying = underlying
			}
		case roleTag:
			e := b.arena.Get(p.ids[0])
			e.Definition = p.ids[0]
		}

		if p.file.system {
			continue
		}

		w := &refWalker{b: b, file: p.file, owner: p.ids[len(p.ids)-1], seen: make(map[[2]ID]bool)}
		w.root(p)
		for _, id := range p.ids {
			b.arena.Get(id).Children = w.refs
		}
	}

	// Forward tag declarations resolve to the tag's definition, if any.
	for name, ids := range b.tags {
		def := b.tagDefinition(name)
		for _, id := range ids {
			if e := b.arena.Get(id); !e.IsDefinition {
				e.Definition = def
			}
		}
	}
}

// ordinaryDefinition returns the first defining function or variable named name.
func (b *unitBuilder) ordinaryDefinition(name string) ID {
	for _, id := range b.ordinary[name] {
		if b.arena.Get(id).IsDefinition {
			return id
		}
	}
	return NoEntity
}

// declarationBefore returns the first declaration of name that precedes
// owner in the unit, falling back to the definition when every declaration
// comes later. Entity IDs follow the unit's textual order.
func (b *unitBuilder) declarationBefore(name string, owner ID) ID {
	ids := b.ordinary[name]
	if ids[0] <= owner {
		return ids[0]
	}
	if def := b.ordinaryDefinition(name); def != NoEntity {
		return def
	}
	return ids[0]
}

func (b *unitBuilder) tagDefinition(name string) ID {
	for _, id := range b.tags[name] {
		if b.arena.Get(id).IsDefinition {
			return id
		}
	}
	return NoEntity
}

// typeDeclaration returns the entity declaring the type named by a type specifier.
func (b *unitBuilder) typeDeclaration(typeNode *sitter.Node, f *parsedFile) ID {
	if typeNode == nil {
		return NoEntity
	}

	switch typeNode.Kind() {
	case "type_identifier":
		if ids := b.typedefs[nodeText(typeNode, f.source)]; len(ids) > 0 {
			return ids[0]
		}
	case "struct_specifier", "union_specifier", "enum_specifier":
		if id, ok := b.tagByNode[tagKey{file: f.path, start: typeNode.StartByte()}]; ok {
			return id
		}
		nameNode := typeNode.ChildByFieldName("name")
		if nameNode == nil {
			return NoEntity
		}
		name := nodeText(nameNode, f.source)
		if def := b.tagDefinition(name); def != NoEntity {
			return def
		}
		if ids := b.tags[name]; len(ids) > 0 {
			return ids[0]
		}
	}
	return NoEntity
}

// scope tracks block-scoped names that shadow top-level entities.
type scope struct {
	parent *scope
	names  map[string]bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]bool)}
}

func (s *scope) declare(name string) {
	s.names[name] = true
}

func (s *scope) has(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.names[name] {
			return true
		}
	}
	return false
}

// refWalker collects the reference entities found below one top-level node.
type refWalker struct {
	b     *unitBuilder
	file  *parsedFile
	owner ID // last entity of the node being walked
	refs  []ID
	seen  map[[2]ID]bool
}

func (w *refWalker) root(p pending) {
	top := newScope(nil)

	switch p.role {
	case roleFunction:
		for _, child := range children(p.node) {
			switch {
			case sameNode(child, p.typeNode):
				w.walk(child, top)
			case sameNode(child, p.node.ChildByFieldName("declarator")):
				w.functionDeclarator(child, top)
			default:
				w.walk(child, top)
			}
		}
	case roleDeclaration, roleTypedef:
		for _, child := range children(p.node) {
			if sameNode(child, p.typeNode) || !isDeclaratorKind(child.Kind()) {
				w.walk(child, top)
				continue
			}
			w.declarator(child, top, false)
		}
	case roleTag:
		w.walk(p.node, top)
	}
}

// functionDeclarator declares the parameters of a function definition in fn.
func (w *refWalker) functionDeclarator(n *sitter.Node, fn *scope) {
	for n != nil && n.Kind() != "function_declarator" {
		n = innerDeclarator(n)
	}
	if n == nil {
		return
	}
	params := n.ChildByFieldName("parameters")
	for _, param := range children(params) {
		if param.Kind() != "parameter_declaration" {
			continue
		}
		w.walk(param.ChildByFieldName("type"), fn)
		if decl := param.ChildByFieldName("declarator"); decl != nil {
			w.declarator(decl, fn, true)
		}
	}
}

// declarator walks a declarator, declaring the names it introduces when
// declare is set and skipping them otherwise.
func (w *refWalker) declarator(n *sitter.Node, sc *scope, declare bool) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case "identifier", "type_identifier", "field_identifier":
		if declare {
			sc.declare(nodeText(n, w.file.source))
		}
	case "init_declarator":
		w.declarator(n.ChildByFieldName("declarator"), sc, declare)
		w.walk(n.ChildByFieldName("value"), sc)
	case "array_declarator":
		w.declarator(n.ChildByFieldName("declarator"), sc, declare)
		w.walk(n.ChildByFieldName("size"), sc)
	case "function_declarator":
		w.declarator(innerDeclarator(n), sc, declare)
		w.walk(n.ChildByFieldName("parameters"), newScope(sc))
	case "pointer_declarator", "parenthesized_declarator", "attributed_declarator":
		for _, child := range children(n) {
			if isDeclaratorKind(child.Kind()) {
				w.declarator(child, sc, declare)
			} else if child.IsNamed() {
				w.walk(child, sc)
			}
		}
	default:
		w.walk(n, sc)
	}
}

func (w *refWalker) walk(n *sitter.Node, sc *scope) {
	if n == nil {
		return
	}

	switch n.Kind() {
	case "compound_statement", "for_statement":
		inner := newScope(sc)
		for _, child := range children(n) {
			w.walk(child, inner)
		}
	case "declaration", "parameter_declaration":
		typeNode := n.ChildByFieldName("type")
		w.walk(typeNode, sc)
		for _, decl := range declarators(n, typeNode) {
			w.declarator(decl, sc, true)
		}
	case "identifier":
		if name := nodeText(n, w.file.source); !sc.has(name) {
			w.ordinary(n, name)
		}
	case "type_identifier":
		if name := nodeText(n, w.file.source); !sc.has(name) {
			if ids := w.b.typedefs[name]; len(ids) > 0 {
				w.reference(n, name, ids[0], ids[0])
			}
		}
	case "struct_specifier", "union_specifier", "enum_specifier":
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			name := nodeText(nameNode, w.file.source)
			if ids := w.b.tags[name]; len(ids) > 0 {
				w.reference(nameNode, name, ids[0], w.b.tagDefinition(name))
			}
		}
		w.walk(n.ChildByFieldName("body"), sc)
	case "enumerator":
		w.walk(n.ChildByFieldName("value"), sc)
	case "field_expression":
		w.walk(n.ChildByFieldName("argument"), sc)
	case "field_identifier", "statement_identifier", "comment",
		"string_literal", "char_literal", "system_lib_string",
		"preproc_include", "preproc_def", "preproc_function_def", "preproc_call", "preproc_defined":
	default:
		for _, child := range children(n) {
			w.walk(child, sc)
		}
	}
}

func (w *refWalker) ordinary(n *sitter.Node, name string) {
	if id, ok := w.b.enumConsts[name]; ok {
		w.reference(n, name, id, id)
		return
	}
	if len(w.b.ordinary[name]) > 0 {
		w.reference(n, name, w.b.declarationBefore(name, w.owner), w.b.ordinaryDefinition(name))
	}
}

// reference records a reference entity bound to referenced and definition.
// References resolving to the same pair are recorded once.
func (w *refWalker) reference(n *sitter.Node, name string, referenced, definition ID) {
	key := [2]ID{referenced, definition}
	if w.seen[key] {
		return
	}
	w.seen[key] = true

	line, _ := lineRange(n)
	id := w.b.arena.Add(Entity{
		Kind:          KindReference,
		Name:          name,
		Location:      nodeLocation(n, w.file.path),
		StartLine:     line,
		EndLine:       line,
		ExpansionLine: line,
		TU:            w.b.unit.Index,
		Referenced:    referenced,
		Definition:    definition,
		TypeDecl:      NoEntity,
		Underlying:    NoEntity,
	})
	w.refs = append(w.refs, id)
}
