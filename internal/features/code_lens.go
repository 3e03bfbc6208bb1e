package features

import (
	"strconv"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
	"cstyle/internal/lsp/lspext"
	"cstyle/internal/shared/util"
)

// Client commands the lenses invoke.
const (
	CommandRunMain        = "cstyle-lang-server.runMain"
	CommandShowReferences = "cstyle-lang-server.showReferences"
)

// CodeLenses adds a lens to every function declared in the document: a run
// action on main and a reference count elsewhere. Reference locations are
// in the same document, so m converts all of them.
func CodeLenses(state *lang.ParseState, m lspext.Mapper) []protocol.CodeLens {
	out := []protocol.CodeLens{}
	if state == nil {
		return out
	}
	for _, name := range util.SortedStringKeys(state.Symbols.Functions) {
		f := state.Symbols.Functions[name]
		if f.Declaration == nil || f.Declaration.URI != state.URI {
			continue
		}
		at := m.Range(f.Declaration.Range)
		lens := protocol.CodeLens{Range: at}
		if name == "main" {
			lens.Command = &protocol.Command{Title: "▶ Run", Command: CommandRunMain}
		} else {
			refs := make([]protocol.Location, 0, len(f.References))
			for _, ref := range f.References {
				refs = append(refs, m.Location(ref))
			}
			lens.Command = &protocol.Command{
				Title:     strconv.Itoa(len(refs)) + " references",
				Command:   CommandShowReferences,
				Arguments: []any{state.URI, at.Start, refs},
			}
		}
		out = append(out, lens)
	}
	return out
}
