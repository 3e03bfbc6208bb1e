package lang

import (
	"strings"

	"cstyle/internal/engine/syntax"
)

// ArrayQualifier marks one array dimension in a qualifier list.
const ArrayQualifier = "[]"

// Position is a zero-based line and byte column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p lies inside r, inclusive at both ends.
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Character < r.Start.Character {
		return false
	}
	if p.Line == r.End.Line && p.Character > r.End.Character {
		return false
	}
	return true
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// PositionOf converts a syntax point.
func PositionOf(p syntax.Point) Position {
	return Position{Line: p.Row, Character: p.Column}
}

// RangeOf converts a syntax span.
func RangeOf(s syntax.Span) Range {
	return Range{Start: PositionOf(s.Start), End: PositionOf(s.End)}
}

// LocationOf returns the location of n inside the document uri.
func LocationOf(n syntax.Node, uri string) *Location {
	return &Location{URI: uri, Range: RangeOf(n.Span())}
}

// Var is a declared variable, parameter or struct field.
type Var struct {
	PrimaryType string   `json:"primary_type"`
	Qualifiers  []string `json:"type_qualifier_list"`
	// Declaration is nil for builtins.
	Declaration *Location `json:"declaration_position,omitempty"`
	Unused      bool      `json:"unused"`
}

// ArrayDepth counts the array dimensions in the qualifier list.
func (v *Var) ArrayDepth() int {
	depth := 0
	for _, q := range v.Qualifiers {
		if q == ArrayQualifier {
			depth++
		}
	}
	return depth
}

// Signature renders "<type> <qualifiers...> <name>". An empty qualifier list
// still contributes its separator.
func (v *Var) Signature(name string) string {
	return v.PrimaryType + " " + strings.Join(v.Qualifiers, " ") + " " + name
}

// Clone returns a deep copy so per-document state never aliases shared facts.
func (v *Var) Clone() *Var {
	cp := *v
	cp.Qualifiers = append([]string(nil), v.Qualifiers...)
	if v.Declaration != nil {
		loc := *v.Declaration
		cp.Declaration = &loc
	}
	return &cp
}

// Type is a builtin type or a user struct.
type Type struct {
	Fields      map[string]*Var `json:"fields"`
	Declaration *Location       `json:"declaration_position,omitempty"`
	Desc        string          `json:"desc"`
	Builtin     bool            `json:"builtin"`
}

// Param is one ordered function parameter.
type Param struct {
	Name string `json:"name"`
	Var  *Var   `json:"var"`
}

type Func struct {
	Params      []Param    `json:"params"`
	ReturnType  string     `json:"return_type"`
	Declaration *Location  `json:"declaration_position,omitempty"`
	References  []Location `json:"references"`
	Desc        string     `json:"desc"`
}

// Label renders "ret name(type a, type b)".
func (f *Func) Label(name string) string {
	var b strings.Builder
	b.WriteString(f.ReturnType)
	if f.ReturnType != "" {
		b.WriteByte(' ')
	}
	b.WriteString(name)
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ParamLabel(p))
	}
	b.WriteByte(')')
	return b.String()
}

// ParamLabel renders one parameter as "type name[]".
func ParamLabel(p Param) string {
	if p.Var == nil {
		return p.Name
	}
	label := p.Var.PrimaryType + " " + p.Name
	for _, q := range p.Var.Qualifiers {
		if q == ArrayQualifier {
			label += q
		}
	}
	return label
}

// Define is a preprocessor macro.
type Define struct {
	InsertText  string    `json:"insert_text"`
	Declaration *Location `json:"declaration_position,omitempty"`
}

type KeywordKind int

const (
	KeywordConstant KeywordKind = iota
	KeywordKeyword
)

func (k KeywordKind) String() string {
	if k == KeywordConstant {
		return "constant"
	}
	return "keyword"
}

type Keyword struct {
	Kind  KeywordKind
	Label string
}

// SymbolTable holds the document-global types, functions and macros. The
// three categories are independent namespaces.
type SymbolTable struct {
	Types     map[string]*Type
	Functions map[string]*Func
	Defines   map[string]*Define
}

func NewSymbolTable() SymbolTable {
	return SymbolTable{
		Types:     make(map[string]*Type),
		Functions: make(map[string]*Func),
		Defines:   make(map[string]*Define),
	}
}
