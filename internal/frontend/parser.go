package frontend

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// Options configures include resolution.
type Options struct {
	// IncludeDirs are searched for project headers (like -I).
	IncludeDirs []string
	// SystemIncludeDirs are searched last; headers found there are system headers.
	SystemIncludeDirs []string
}

// Parser turns C source files into translation units backed by a shared arena.
type Parser struct {
	arena    *Arena
	opts     Options
	language *sitter.Language
	units    int
}

// NewParser creates a parser that stores entities in arena.
func NewParser(arena *Arena, opts Options) *Parser {
	return &Parser{
		arena:    arena,
		opts:     Options{IncludeDirs: absDirs(opts.IncludeDirs), SystemIncludeDirs: absDirs(opts.SystemIncludeDirs)},
		language: sitter.NewLanguage(c.Language()),
	}
}

// Arena returns the arena entities are stored in.
func (p *Parser) Arena() *Arena {
	return p.arena
}

// ParseTranslationUnit parses path and every header it includes.
func (p *Parser) ParseTranslationUnit(ctx context.Context, path string) (*TranslationUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	b := newUnitBuilder(p, &TranslationUnit{Index: p.units, Path: abs})
	defer b.close()

	if err := b.includeFile(abs, false); err != nil {
		return nil, err
	}
	b.resolve()

	p.units++
	return b.unit, nil
}

func absDirs(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if abs, err := filepath.Abs(dir); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// parsedFile is one file parsed into a translation unit.
type parsedFile struct {
	path   string
	source []byte
	tree   *sitter.Tree
	system bool
}

type pendingRole int

const (
	roleFunction pendingRole = iota
	roleDeclaration
	roleTypedef
	roleTag
)

// pending is a syntax node whose references are bound once the whole unit is known.
type pending struct {
	ids      []ID
	node     *sitter.Node
	typeNode *sitter.Node
	file     *parsedFile
	role     pendingRole
}

// macroState is the live definition of a macro name.
type macroState struct {
	id   ID
	body []string // identifiers named in the replacement list
}

type tagKey struct {
	file  string
	start uint
}

// unitBuilder accumulates one translation unit.
type unitBuilder struct {
	p     *Parser
	arena *Arena
	unit  *TranslationUnit
	files map[string]*parsedFile

	ordinary   map[string][]ID // functions and variables in textual order
	typedefs   map[string][]ID
	tags       map[string][]ID
	enumConsts map[string]ID
	tagByNode  map[tagKey]ID
	macros     map[string]*macroState

	pending []pending
}

func newUnitBuilder(p *Parser, unit *TranslationUnit) *unitBuilder {
	return &unitBuilder{
		p:          p,
		arena:      p.arena,
		unit:       unit,
		files:      make(map[string]*parsedFile),
		ordinary:   make(map[string][]ID),
		typedefs:   make(map[string][]ID),
		tags:       make(map[string][]ID),
		enumConsts: make(map[string]ID),
		tagByNode:  make(map[tagKey]ID),
		macros:     make(map[string]*macroState),
	}
}

func (b *unitBuilder) close() {
	for _, f := range b.files {
		if f.tree != nil {
			f.tree.Close()
		}
	}
}

// includeFile parses path into the unit unless it was already included.
func (b *unitBuilder) includeFile(path string, system bool) error {
	if _, seen := b.files[path]; seen {
		return nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(b.p.language); err != nil {
		return &ParseError{Path: path, Err: err}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return &ParseError{Path: path, Err: ErrNoSyntaxTree}
	}

	f := &parsedFile{path: path, source: source, tree: tree, system: system}
	b.files[path] = f
	b.unit.Files = append(b.unit.Files, path)

	root := tree.RootNode()
	if root.HasError() && !system {
		log.Printf("Warning: syntax errors in %s, extraction may be incomplete", path)
	}

	return b.items(root, f)
}

// items processes the top-level items below node in textual order.
func (b *unitBuilder) items(node *sitter.Node, f *parsedFile) error {
	for _, child := range children(node) {
		if err := b.item(child, f); err != nil {
			return err
		}
	}
	return nil
}

func (b *unitBuilder) item(n *sitter.Node, f *parsedFile) error {
	switch n.Kind() {
	case "preproc_include":
		return b.directive(n, f)
	case "preproc_def", "preproc_function_def":
		b.macroDefinition(n, f)
		return nil
	case "preproc_call":
		b.preprocCall(n, f)
		return nil
	case "preproc_if", "preproc_elif":
		// Every branch is taken; conditions are not evaluated.
		condition := n.ChildByFieldName("condition")
		if err := b.scanExpansions(condition, f); err != nil {
			return err
		}
		return b.conditionalItems(n, condition, f)
	case "preproc_ifdef", "preproc_elifdef":
		return b.conditionalItems(n, n.ChildByFieldName("name"), f)
	case "preproc_else", "declaration_list", "ERROR":
		return b.items(n, f)
	case "linkage_specification":
		return b.items(n.ChildByFieldName("body"), f)
	case "function_definition":
		return b.functionDefinition(n, f)
	case "declaration":
		return b.declaration(n, f)
	case "type_definition":
		return b.typeDefinition(n, f)
	case "struct_specifier", "union_specifier", "enum_specifier":
		b.tagSpecifier(n, f, 0)
		return b.scanExpansions(n, f)
	case "comment":
		return nil
	}

	if n.IsNamed() {
		return b.scanExpansions(n, f)
	}
	return nil
}

func (b *unitBuilder) conditionalItems(n, skip *sitter.Node, f *parsedFile) error {
	for _, child := range children(n) {
		if sameNode(child, skip) {
			continue
		}
		if err := b.item(child, f); err != nil {
			return err
		}
	}
	return nil
}

// addTopLevel stores e as a top-level entity of the unit.
func (b *unitBuilder) addTopLevel(e Entity, f *parsedFile) ID {
	e.TU = b.unit.Index
	e.System = f.system
	if e.ExpansionLine == 0 {
		e.ExpansionLine = e.Location.Line
	}
	e.Definition = NoEntity
	e.Referenced = NoEntity
	e.TypeDecl = NoEntity
	e.Underlying = NoEntity

	id := b.arena.Add(e)
	b.unit.Entities = append(b.unit.Entities, id)
	return id
}

func (b *unitBuilder) directive(n *sitter.Node, f *parsedFile) error {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return nil
	}

	angled := pathNode.Kind() == "system_lib_string"
	name := strings.Trim(nodeText(pathNode, f.source), "\"<> \t")
	startLine, endLine := lineRange(n)

	target, system := "", false
	if pathNode.Kind() == "string_literal" || angled {
		target, system = b.resolveInclude(name, angled, f)
	}

	b.addTopLevel(Entity{
		Kind:          KindInclusionDirective,
		Name:          name,
		Location:      nodeLocation(n, f.path),
		StartLine:     startLine,
		EndLine:       endLine,
		IncludeTarget: target,
		Angled:        angled,
	}, f)

	if target == "" {
		return nil
	}
	return b.includeFile(target, system || f.system)
}

// resolveInclude finds the file an include spelling refers to.
func (b *unitBuilder) resolveInclude(name string, angled bool, f *parsedFile) (string, bool) {
	type candidate struct {
		dir    string
		system bool
	}

	var candidates []candidate
	if !angled {
		candidates = append(candidates, candidate{dir: filepath.Dir(f.path), system: f.system})
	}
	for _, dir := range b.p.opts.IncludeDirs {
		candidates = append(candidates, candidate{dir: dir})
	}
	for _, dir := range b.p.opts.SystemIncludeDirs {
		candidates = append(candidates, candidate{dir: dir, system: true})
	}

	for _, cand := range candidates {
		path := filepath.Join(cand.dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return filepath.Clean(path), cand.system
		}
	}
	return "", false
}

func (b *unitBuilder) macroDefinition(n *sitter.Node, f *parsedFile) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, f.source)

	params := make(map[string]bool)
	if paramsNode := n.ChildByFieldName("parameters"); paramsNode != nil {
		for _, child := range children(paramsNode) {
			if child.Kind() == "identifier" {
				params[nodeText(child, f.source)] = true
			}
		}
	}

	var body []string
	if value := n.ChildByFieldName("value"); value != nil {
		seen := make(map[string]bool)
		for _, ident := range identifierRe.FindAllString(nodeText(value, f.source), -1) {
			if ident == name || params[ident] || seen[ident] {
				continue
			}
			seen[ident] = true
			body = append(body, ident)
		}
	}

	startLine, endLine := lineRange(n)
	id := b.addTopLevel(Entity{
		Kind:      KindMacroDefinition,
		Name:      name,
		Location:  nodeLocation(nameNode, f.path),
		StartLine: startLine,
		EndLine:   endLine,
	}, f)
	b.arena.Get(id).Definition = id

	b.macros[name] = &macroState{id: id, body: body}
}

// preprocCall handles #undef; other unknown directives are ignored.
func (b *unitBuilder) preprocCall(n *sitter.Node, f *parsedFile) {
	directive := strings.TrimSpace(nodeText(n.ChildByFieldName("directive"), f.source))
	if directive != "#undef" {
		return
	}
	name := strings.TrimSpace(nodeText(n.ChildByFieldName("argument"), f.source))
	delete(b.macros, name)
}

// scanExpansions records a macro expansion for every identifier below n that
// names a live macro, and picks up directives nested inside n.
func (b *unitBuilder) scanExpansions(n *sitter.Node, f *parsedFile) error {
	if n == nil || f.system {
		return nil
	}

	var firstErr error
	walkTree(n, func(node *sitter.Node) bool {
		if firstErr != nil {
			return false
		}
		switch node.Kind() {
		case "preproc_include":
			firstErr = b.directive(node, f)
			return false
		case "preproc_def", "preproc_function_def":
			b.macroDefinition(node, f)
			return false
		case "preproc_call":
			b.preprocCall(node, f)
			return false
		case "preproc_defined", "comment", "string_literal", "char_literal":
			return false
		case "identifier", "type_identifier", "field_identifier":
			name := nodeText(node, f.source)
			if state, ok := b.macros[name]; ok {
				loc := nodeLocation(node, f.path)
				b.expand(name, state, loc, f, make(map[string]bool))
			}
			return false
		}
		return true
	})
	return firstErr
}

// expand records an expansion of name at loc, then the macros its
// replacement list names, all attributed to the same expansion line.
func (b *unitBuilder) expand(name string, state *macroState, loc Location, f *parsedFile, active map[string]bool) {
	active[name] = true
	id := b.addTopLevel(Entity{
		Kind:          KindMacroExpansion,
		Name:          name,
		Location:      loc,
		StartLine:     loc.Line,
		EndLine:       loc.Line,
		ExpansionLine: loc.Line,
	}, f)
	b.arena.Get(id).Definition = state.id

	for _, inner := range state.body {
		if active[inner] {
			continue
		}
		if innerState, ok := b.macros[inner]; ok {
			b.expand(inner, innerState, loc, f, active)
		}
	}
}

func (b *unitBuilder) functionDefinition(n *sitter.Node, f *parsedFile) error {
	name, nameNode := declaratorName(n.ChildByFieldName("declarator"), f.source)
	if name == "" {
		return b.scanExpansions(n, f)
	}

	typeNode := n.ChildByFieldName("type")
	b.tagSpecifier(typeNode, f, 1)

	startLine, endLine := lineRange(n)
	id := b.addTopLevel(Entity{
		Kind:          KindFunction,
		Name:          name,
		Location:      nodeLocation(nameNode, f.path),
		StartLine:     startLine,
		EndLine:       endLine,
		IsDeclaration: true,
		IsDefinition:  true,
	}, f)
	b.ordinary[name] = append(b.ordinary[name], id)

	b.pending = append(b.pending, pending{ids: []ID{id}, node: n, typeNode: typeNode, file: f, role: roleFunction})
	return b.scanExpansions(n, f)
}

// declarators returns the declarator children of a declaration or typedef.
func declarators(n, typeNode *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, child := range children(n) {
		if sameNode(child, typeNode) || !isDeclaratorKind(child.Kind()) {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (b *unitBuilder) declaration(n *sitter.Node, f *parsedFile) error {
	typeNode := n.ChildByFieldName("type")
	decls := declarators(n, typeNode)
	b.tagSpecifier(typeNode, f, len(decls))

	extern := hasStorageClass(n, f.source, "extern")
	startLine, endLine := lineRange(n)

	var ids []ID
	for _, decl := range decls {
		name, nameNode := declaratorName(decl, f.source)
		if name == "" {
			continue
		}

		e := Entity{
			Name:          name,
			Location:      nodeLocation(nameNode, f.path),
			StartLine:     startLine,
			EndLine:       endLine,
			IsDeclaration: true,
		}
		if isFunctionDeclarator(decl) {
			e.Kind = KindFunction
		} else {
			e.Kind = KindVariable
			e.IsDefinition = !extern || decl.Kind() == "init_declarator"
		}

		id := b.addTopLevel(e, f)
		b.ordinary[name] = append(b.ordinary[name], id)
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		b.pending = append(b.pending, pending{ids: ids, node: n, typeNode: typeNode, file: f, role: roleDeclaration})
	}
	return b.scanExpansions(n, f)
}

func (b *unitBuilder) typeDefinition(n *sitter.Node, f *parsedFile) error {
	typeNode := n.ChildByFieldName("type")
	decls := declarators(n, typeNode)
	b.tagSpecifier(typeNode, f, len(decls))

	startLine, endLine := lineRange(n)

	var ids []ID
	for _, decl := range decls {
		name, nameNode := declaratorName(decl, f.source)
		if name == "" {
			continue
		}
		id := b.addTopLevel(Entity{
			Kind:          KindTypedef,
			Name:          name,
			Location:      nodeLocation(nameNode, f.path),
			StartLine:     startLine,
			EndLine:       endLine,
			IsDeclaration: true,
		}, f)
		b.arena.Get(id).Definition = id
		b.typedefs[name] = append(b.typedefs[name], id)
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		b.pending = append(b.pending, pending{ids: ids, node: n, typeNode: typeNode, file: f, role: roleTypedef})
	}
	return b.scanExpansions(n, f)
}

// tagSpecifier creates a type entity for a struct, union or enum specifier
// that has a body, or for a bare tagged forward declaration.
func (b *unitBuilder) tagSpecifier(n *sitter.Node, f *parsedFile, declaratorCount int) ID {
	if n == nil || !isTagSpecifier(n.Kind()) {
		return NoEntity
	}

	body := n.ChildByFieldName("body")
	nameNode := n.ChildByFieldName("name")
	if body == nil && (nameNode == nil || declaratorCount > 0) {
		return NoEntity
	}

	name := nodeText(nameNode, f.source)
	loc := nodeLocation(n, f.path)
	if nameNode != nil {
		loc = nodeLocation(nameNode, f.path)
	}

	startLine, endLine := lineRange(n)
	id := b.addTopLevel(Entity{
		Kind:          KindType,
		Name:          name,
		Location:      loc,
		StartLine:     startLine,
		EndLine:       endLine,
		IsDeclaration: true,
		IsDefinition:  body != nil,
	}, f)
	if name != "" {
		b.tags[name] = append(b.tags[name], id)
	}
	b.tagByNode[tagKey{file: f.path, start: n.StartByte()}] = id

	if body == nil {
		return id
	}

	if n.Kind() == "enum_specifier" {
		for _, child := range children(body) {
			if child.Kind() != "enumerator" {
				continue
			}
			constNode := child.ChildByFieldName("name")
			if constNode == nil {
				continue
			}
			constName := nodeText(constNode, f.source)
			line, _ := lineRange(child)
			constID := b.arena.Add(Entity{
				Kind:          KindEnumConstant,
				Name:          constName,
				Location:      nodeLocation(constNode, f.path),
				StartLine:     line,
				EndLine:       line,
				ExpansionLine: line,
				TU:            b.unit.Index,
				System:        f.system,
				IsDeclaration: true,
				IsDefinition:  true,
				Referenced:    NoEntity,
				TypeDecl:      id,
				Underlying:    NoEntity,
			})
			b.arena.Get(constID).Definition = constID
			b.enumConsts[constName] = constID
		}
	}

	b.pending = append(b.pending, pending{ids: []ID{id}, node: body, file: f, role: roleTag})
	return id
}
