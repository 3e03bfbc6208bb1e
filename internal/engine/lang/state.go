package lang

import (
	"strings"

	"cstyle/internal/engine/syntax"
)

// ParseState is the immutable result of analyzing one document version. A
// new ParseState replaces the old one on every edit.
type ParseState struct {
	URI  string
	Text string
	// Tree is nil when the document could not be parsed at all.
	Tree     *syntax.Tree
	Symbols  SymbolTable
	Keywords []Keyword
	Global   *Scope
}

// Line returns line n of the document without its terminator, or "" when n
// is out of range.
func (ps *ParseState) Line(n int) string {
	return LineAt(ps.Text, n)
}

// ScopedView is a ParseState specialised to one position: it shares every
// global table and owns the flattened variables visible there.
type ScopedView struct {
	*ParseState
	Position Position
	Vars     map[string]*Var
}

// ViewAt builds the ScopedView for pos.
func ViewAt(ps *ParseState, pos Position) *ScopedView {
	vars := map[string]*Var{}
	if ps.Global != nil {
		vars = ps.Global.VisibleAt(pos)
	}
	return &ScopedView{ParseState: ps, Position: pos, Vars: vars}
}

// LineAt returns line n of text. Both "\n" and "\r\n" terminate a line.
func LineAt(text string, n int) string {
	if n < 0 {
		return ""
	}
	for i := 0; i < n; i++ {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			return ""
		}
		text = text[idx+1:]
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSuffix(text, "\r")
}
