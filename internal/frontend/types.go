package frontend

import "fmt"

// ID addresses an Entity inside an Arena.
type ID int

// NoEntity marks an absent entity reference.
const NoEntity ID = -1

// Kind classifies an entity.
type Kind int

const (
	KindUnknown Kind = iota
	KindFunction
	KindVariable
	KindType // struct, union or enum
	KindTypedef
	KindEnumConstant
	KindMacroDefinition
	KindMacroExpansion
	KindInclusionDirective
	KindReference
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindFunction:           "function",
	KindVariable:           "variable",
	KindType:               "type",
	KindTypedef:            "typedef",
	KindEnumConstant:       "enum-constant",
	KindMacroDefinition:    "macro-definition",
	KindMacroExpansion:     "macro-expansion",
	KindInclusionDirective: "inclusion-directive",
	KindReference:          "reference",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsMacroOrInclude reports whether entities of this kind are preprocessor
// records rather than declarations.
func (k Kind) IsMacroOrInclude() bool {
	return k == KindMacroDefinition || k == KindMacroExpansion || k == KindInclusionDirective
}

// Location is a position in a source file. Line and Column are 1-indexed.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// IsZero reports whether the location is unknown.
func (l Location) IsZero() bool {
	return l.File == ""
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Entity is one textual occurrence in a parsed translation unit.
// Two occurrences of "the same" program entity are distinct entities,
// including a header declaration seen by two translation units.
type Entity struct {
	ID   ID
	Kind Kind
	Name string // empty for anonymous entities

	Location      Location
	StartLine     int // first line of the entity's range
	EndLine       int // last line of the entity's range (inclusive)
	ExpansionLine int // line the preprocessor attributes the entity to

	TU     int  // owning translation unit
	System bool // located in a system header

	IsDeclaration bool
	IsDefinition  bool

	Definition ID // defining entity this one resolves to
	Referenced ID // declaration a reference binds to
	TypeDecl   ID // declaring entity of the declared type
	Underlying ID // declaring entity of a typedef's underlying type

	// Children holds the reference entities found in the entity's subtree.
	Children []ID

	// IncludeTarget is the file an inclusion directive resolved to, or "".
	IncludeTarget string
	// Angled is set for #include <...> directives.
	Angled bool
}

// HasLocation reports whether the entity has a usable source location.
func (e *Entity) HasLocation() bool {
	return !e.Location.IsZero() && e.StartLine > 0 && e.EndLine >= e.StartLine
}

// TranslationUnit is one parsed main file plus every file it pulls in.
type TranslationUnit struct {
	Index int
	Path  string // absolute path of the main file

	// Entities lists top-level entities in textual order, with the entities of
	// an included file following its inclusion directive.
	Entities []ID

	// Files lists every file parsed into the unit, main file first.
	Files []string
}
