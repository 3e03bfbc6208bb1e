package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/resolver"
	"cstyle/internal/lsp/lspext"
)

// Definition returns where the word under the cursor is declared. Lookup
// order is functions, variables, types, then macros; the first category that
// knows the name decides, so a builtin match yields nil.
func Definition(view *lang.ScopedView, m lspext.Mapper) *protocol.Location {
	return wireLocation(declarationOf(view), m)
}

func declarationOf(view *lang.ScopedView) *lang.Location {
	word := resolver.WordAt(view.Text, view.Position)
	if word == "" {
		return nil
	}
	if f, ok := view.Symbols.Functions[word]; ok {
		return f.Declaration
	}
	if v, ok := view.Vars[word]; ok {
		return v.Declaration
	}
	if t, ok := view.Symbols.Types[word]; ok {
		return t.Declaration
	}
	if d, ok := view.Symbols.Defines[word]; ok {
		return d.Declaration
	}
	return nil
}

// TypeDefinition jumps from a variable to the declaration of its type.
func TypeDefinition(view *lang.ScopedView, m lspext.Mapper) *protocol.Location {
	word := resolver.WordAt(view.Text, view.Position)
	v, ok := view.Vars[word]
	if !ok {
		return nil
	}
	if t, ok := view.Symbols.Types[v.PrimaryType]; ok {
		return wireLocation(t.Declaration, m)
	}
	return nil
}

func wireLocation(loc *lang.Location, m lspext.Mapper) *protocol.Location {
	if loc == nil {
		return nil
	}
	out := m.Location(*loc)
	return &out
}
