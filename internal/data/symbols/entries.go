package symbols

import (
	"sort"

	"cstyle/internal/engine/lang"
)

// Kind classifies an indexed symbol.
type Kind string

const (
	KindFunction Kind = "function"
	KindStruct   Kind = "struct"
	KindField    Kind = "field"
	KindMacro    Kind = "macro"
	KindVariable Kind = "variable"
)

// Entry is one indexed declaration of a document.
type Entry struct {
	Name      string
	Kind      Kind
	Container string
	Detail    string
	Range     lang.Range
}

// Match is an Entry found by Search, with its document.
type Match struct {
	URI string
	Entry
}

// EntriesFrom collects the document-level declarations of state: functions,
// structs with their fields, macros and global variables. Builtins and
// anything declared in another document are left out.
func EntriesFrom(state *lang.ParseState) []Entry {
	if state == nil {
		return nil
	}
	local := func(loc *lang.Location) bool {
		return loc != nil && loc.URI == state.URI
	}

	var entries []Entry
	for name, fn := range state.Symbols.Functions {
		if local(fn.Declaration) {
			entries = append(entries, Entry{Name: name, Kind: KindFunction, Detail: fn.Label(name), Range: fn.Declaration.Range})
		}
	}
	for name, typ := range state.Symbols.Types {
		if typ.Builtin || !local(typ.Declaration) {
			continue
		}
		entries = append(entries, Entry{Name: name, Kind: KindStruct, Detail: typ.Desc, Range: typ.Declaration.Range})
		for field, v := range typ.Fields {
			if local(v.Declaration) {
				entries = append(entries, Entry{Name: field, Kind: KindField, Container: name, Detail: v.Signature(field), Range: v.Declaration.Range})
			}
		}
	}
	for name, def := range state.Symbols.Defines {
		if local(def.Declaration) {
			entries = append(entries, Entry{Name: name, Kind: KindMacro, Detail: def.InsertText, Range: def.Declaration.Range})
		}
	}
	if state.Global != nil {
		for name, v := range state.Global.Vars {
			if local(v.Declaration) {
				entries = append(entries, Entry{Name: name, Kind: KindVariable, Detail: v.Signature(name), Range: v.Declaration.Range})
			}
		}
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Range.Start != b.Range.Start {
			if a.Range.Start.Line != b.Range.Start.Line {
				return a.Range.Start.Line < b.Range.Start.Line
			}
			return a.Range.Start.Character < b.Range.Start.Character
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Kind < b.Kind
	})
}
