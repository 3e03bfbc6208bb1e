// Package analysis runs the post-extraction pass over a freshly built
// ParseState: it marks variables that are read, collects call sites for
// every known function and derives diagnostics.
package analysis

import (
	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
)

// Annotate marks used variables and records call-site references. It
// mutates state and must run before the state is shared with readers.
func Annotate(state *lang.ParseState) {
	if state == nil || state.Tree == nil || state.Tree.Root == nil || state.Global == nil {
		return
	}
	syntax.Walk(state.Tree.Root, func(n syntax.Node) bool {
		switch n.Kind() {
		case "identifier":
			markUsed(state, n)
		case "call_expression":
			recordCall(state, n)
		}
		return true
	})
}

// markUsed clears Unused on the declaration an identifier refers to. The
// declaring occurrence itself does not count as a use.
func markUsed(state *lang.ParseState, n syntax.Node) {
	start := n.Span().Start
	v := state.Global.LookupAt(n.Text(), start.Row)
	if v == nil {
		return
	}
	if v.Declaration != nil && v.Declaration.URI == state.URI &&
		v.Declaration.Range.Start == lang.PositionOf(start) {
		return
	}
	v.Unused = false
}

func recordCall(state *lang.ParseState, n syntax.Node) {
	fn := n.ChildByField("function")
	if fn == nil || fn.Kind() != "identifier" {
		return
	}
	f, ok := state.Symbols.Functions[fn.Text()]
	if !ok {
		return
	}
	f.References = append(f.References, *lang.LocationOf(fn, state.URI))
}
