package features

import (
	"strings"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
	"cstyle/internal/lsp/lspext"
)

type hintAt struct {
	pos  lang.Position
	hint lspext.InlayHint
}

// InlayHints labels each argument of a call to a known function with its
// parameter name ("?" past the end) and lists the parameters still missing
// after the closing parenthesis. A non-nil within keeps only hints inside it.
func InlayHints(state *lang.ParseState, within *lang.Range, m lspext.Mapper) []lspext.InlayHint {
	out := []lspext.InlayHint{}
	if state == nil || state.Tree == nil {
		return out
	}
	syntax.Walk(state.Tree.Root, func(n syntax.Node) bool {
		if n.Kind() != "call_expression" {
			return true
		}
		for _, h := range callHints(state, n) {
			if within != nil && !within.Contains(h.pos) {
				continue
			}
			h.hint.Position = m.Position(h.pos)
			out = append(out, h.hint)
		}
		return true
	})
	return out
}

func callHints(state *lang.ParseState, call syntax.Node) []hintAt {
	fn := call.ChildByField("function")
	args := call.ChildByField("arguments")
	if fn == nil || args == nil {
		return nil
	}
	f, ok := state.Symbols.Functions[fn.Text()]
	if !ok {
		return nil
	}

	var hints []hintAt
	seen := 0
	for _, arg := range args.Children() {
		switch arg.Kind() {
		case "(", ",", "ERROR", "comment":
		case ")":
			if seen < len(f.Params) {
				names := make([]string, 0, len(f.Params)-seen)
				for _, p := range f.Params[seen:] {
					names = append(names, p.Name)
				}
				hints = append(hints, hintAt{
					pos: lang.PositionOf(arg.Span().End),
					hint: lspext.InlayHint{
						Label:       "missing: " + strings.Join(names, ", "),
						Kind:        lspext.InlayHintKindParameter,
						PaddingLeft: true,
					},
				})
			}
		default:
			label := "?"
			if seen < len(f.Params) {
				label = f.Params[seen].Name
			}
			hints = append(hints, hintAt{
				pos: lang.PositionOf(arg.Span().Start),
				hint: lspext.InlayHint{
					Label:        label + ":",
					Kind:         lspext.InlayHintKindParameter,
					PaddingRight: true,
				},
			})
			seen++
		}
	}
	return hints
}
