package frontend

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// lineRange returns the 1-indexed inclusive line range covered by node.
// Nodes that end at column 0 (directives swallow their newline) end on the
// previous line.
func lineRange(node *sitter.Node) (int, int) {
	start := node.StartPosition()
	end := node.EndPosition()
	startLine := int(start.Row) + 1
	endLine := int(end.Row) + 1
	if end.Column == 0 && end.Row > start.Row {
		endLine = int(end.Row)
	}
	return startLine, endLine
}

// nodeLocation returns the location of node's first byte in file.
func nodeLocation(node *sitter.Node, file string) Location {
	pos := node.StartPosition()
	return Location{
		File:   file,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
// Children are skipped when the visitor returns false.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// children returns the direct children of node.
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(uint(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// sameNode reports whether a and b denote the same syntax node.
func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// isDeclaratorKind reports whether kind can appear in a declarator position.
func isDeclaratorKind(kind string) bool {
	switch kind {
	case "identifier", "type_identifier", "field_identifier",
		"init_declarator", "pointer_declarator", "array_declarator",
		"function_declarator", "parenthesized_declarator", "attributed_declarator":
		return true
	}
	return false
}

// innerDeclarator returns the declarator wrapped by node, if any.
func innerDeclarator(node *sitter.Node) *sitter.Node {
	if inner := node.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for _, child := range children(node) {
		if child.IsNamed() && isDeclaratorKind(child.Kind()) {
			return child
		}
	}
	return nil
}

// declaratorName finds the identifier a declarator introduces.
func declaratorName(node *sitter.Node, source []byte) (string, *sitter.Node) {
	if node == nil {
		return "", nil
	}

	switch node.Kind() {
	case "identifier", "type_identifier", "field_identifier":
		return nodeText(node, source), node
	case "init_declarator", "pointer_declarator", "array_declarator",
		"function_declarator", "parenthesized_declarator", "attributed_declarator":
		return declaratorName(innerDeclarator(node), source)
	}
	return "", nil
}

// isFunctionDeclarator reports whether a declarator declares a function
// (as opposed to a variable, including function pointers).
func isFunctionDeclarator(node *sitter.Node) bool {
	for node != nil {
		switch node.Kind() {
		case "init_declarator", "pointer_declarator", "attributed_declarator":
			node = innerDeclarator(node)
		case "function_declarator":
			inner := innerDeclarator(node)
			return inner != nil && inner.Kind() == "identifier"
		default:
			return false
		}
	}
	return false
}

// hasStorageClass reports whether a declaration carries the given specifier.
func hasStorageClass(node *sitter.Node, source []byte, class string) bool {
	for _, child := range children(node) {
		if child.Kind() == "storage_class_specifier" && nodeText(child, source) == class {
			return true
		}
	}
	return false
}

// isTagSpecifier reports whether kind names a struct, union or enum specifier.
func isTagSpecifier(kind string) bool {
	return kind == "struct_specifier" || kind == "union_specifier" || kind == "enum_specifier"
}
