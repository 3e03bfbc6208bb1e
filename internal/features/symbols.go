package features

import (
	"sort"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/data/symbols"
	"cstyle/internal/engine/lang"
	"cstyle/internal/lsp/lspext"
	"cstyle/internal/shared/util"
)

// DocumentSymbols lists the functions, structs, macros and global variables
// declared in the document, ordered by position. Struct fields are nested
// under their struct.
func DocumentSymbols(state *lang.ParseState, m lspext.Mapper) []protocol.DocumentSymbol {
	out := []protocol.DocumentSymbol{}
	if state == nil {
		return out
	}
	local := func(loc *lang.Location) bool {
		return loc != nil && loc.URI == state.URI
	}
	symbolAt := func(name, detail string, kind protocol.SymbolKind, loc *lang.Location) protocol.DocumentSymbol {
		at := m.Range(loc.Range)
		sym := protocol.DocumentSymbol{Name: name, Kind: kind, Range: at, SelectionRange: at}
		if detail != "" {
			sym.Detail = &detail
		}
		return sym
	}

	for name, f := range state.Symbols.Functions {
		if local(f.Declaration) {
			out = append(out, symbolAt(name, f.Label(name), protocol.SymbolKindFunction, f.Declaration))
		}
	}
	for name, t := range state.Symbols.Types {
		if !local(t.Declaration) {
			continue
		}
		sym := symbolAt(name, t.Desc, protocol.SymbolKindStruct, t.Declaration)
		for _, field := range util.SortedStringKeys(t.Fields) {
			v := t.Fields[field]
			if local(v.Declaration) {
				sym.Children = append(sym.Children, symbolAt(field, v.Signature(field), protocol.SymbolKindField, v.Declaration))
			}
		}
		sortSymbols(sym.Children)
		out = append(out, sym)
	}
	for name, d := range state.Symbols.Defines {
		if local(d.Declaration) {
			out = append(out, symbolAt(name, d.InsertText, protocol.SymbolKindConstant, d.Declaration))
		}
	}
	if state.Global != nil {
		for name, v := range state.Global.Vars {
			if local(v.Declaration) {
				out = append(out, symbolAt(name, v.Signature(name), protocol.SymbolKindVariable, v.Declaration))
			}
		}
	}
	sortSymbols(out)
	return out
}

func sortSymbols(syms []protocol.DocumentSymbol) {
	sort.Slice(syms, func(i, j int) bool {
		a, b := syms[i].Range.Start, syms[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Character != b.Character {
			return a.Character < b.Character
		}
		return syms[i].Name < syms[j].Name
	})
}

var workspaceKinds = map[symbols.Kind]protocol.SymbolKind{
	symbols.KindFunction: protocol.SymbolKindFunction,
	symbols.KindStruct:   protocol.SymbolKindStruct,
	symbols.KindField:    protocol.SymbolKindField,
	symbols.KindMacro:    protocol.SymbolKindConstant,
	symbols.KindVariable: protocol.SymbolKindVariable,
}

// WorkspaceSymbols converts index matches to their wire form. mapperFor
// supplies the column mapping of each match's document.
func WorkspaceSymbols(matches []symbols.Match, mapperFor func(uri string) lspext.Mapper) []protocol.SymbolInformation {
	out := make([]protocol.SymbolInformation, 0, len(matches))
	for _, m := range matches {
		kind, ok := workspaceKinds[m.Kind]
		if !ok {
			kind = protocol.SymbolKindVariable
		}
		sym := protocol.SymbolInformation{
			Name:     m.Name,
			Kind:     kind,
			Location: mapperFor(m.URI).Location(lang.Location{URI: m.URI, Range: m.Range}),
		}
		if m.Container != "" {
			sym.ContainerName = util.Ptr(m.Container)
		}
		out = append(out, sym)
	}
	return out
}
