package features

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/resolver"
	"cstyle/internal/shared/util"
)

// Hover describes the word under the cursor. Types win over functions,
// functions over variables.
func Hover(view *lang.ScopedView) *protocol.Hover {
	word := resolver.WordAt(view.Text, view.Position)
	if word == "" {
		return nil
	}

	var text string
	if t, ok := view.Symbols.Types[word]; ok {
		text = typeHover(word, t)
	} else if f, ok := view.Symbols.Functions[word]; ok {
		text = funcHover(word, f)
	} else if v, ok := view.Vars[word]; ok {
		text = v.Signature(word)
	} else {
		return nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: text},
	}
}

func typeHover(name string, t *lang.Type) string {
	var b strings.Builder
	b.WriteString("### " + name + "\n---\n")
	if t.Builtin {
		b.WriteString("builtin type\n\n" + t.Desc)
	} else {
		b.WriteString("user defined struct")
	}
	if len(t.Fields) > 0 {
		b.WriteString("\n\nfields:\n")
		for _, field := range util.SortedStringKeys(t.Fields) {
			b.WriteString(" - " + field + "\n\n")
		}
	}
	return b.String()
}

func funcHover(name string, f *lang.Func) string {
	var b strings.Builder
	b.WriteString("### " + name + "\n---\n" + f.Desc)
	if len(f.Params) > 0 {
		b.WriteString("\n\nparams:\n")
		for _, p := range f.Params {
			b.WriteString(" - " + p.Name + "\n\n")
		}
	}
	return b.String()
}
