package resolver

import (
	"sort"

	"cstyle/internal/engine/lang"
)

// LengthMember is the pseudo-member offered on an array that has not been
// fully indexed.
const LengthMember = "length()"

type MemberKind int

const (
	MemberField MemberKind = iota
	MemberLength
)

// Member is one candidate reachable after a chain.
type Member struct {
	Name string
	Kind MemberKind
	// Var is the field declaration. It is nil for the length pseudo-member.
	Var *lang.Var
}

// ResolveChain looks base up among the view's visible variables and walks
// chain (innermost first, as produced by TokenizeChainBefore, without the
// base itself) through struct fields and array dimensions.
func ResolveChain(view *lang.ScopedView, base string, chain []string) []Member {
	v, ok := view.Vars[base]
	if !ok || v == nil {
		return nil
	}
	return Walk(v, chain, view.Symbols.Types)
}

// Walk resolves the members of v after applying chain. Tokens are consumed
// from the end of the slice; chain is not modified.
func Walk(v *lang.Var, chain []string, types map[string]*lang.Type) []Member {
	remaining := chain

	indexed := 0
	for len(remaining) > 0 && remaining[len(remaining)-1] == lang.ArrayQualifier {
		indexed++
		remaining = remaining[:len(remaining)-1]
	}

	declared := v.ArrayDepth()
	if indexed > declared {
		return nil
	}
	if indexed < declared {
		return []Member{{Name: LengthMember, Kind: MemberLength}}
	}

	t, ok := types[v.PrimaryType]
	if !ok || t == nil {
		return nil
	}

	if len(remaining) == 0 {
		return fieldsOf(t)
	}

	next := remaining[len(remaining)-1]
	field, ok := t.Fields[next]
	if !ok || field == nil {
		return nil
	}
	return Walk(field, remaining[:len(remaining)-1], types)
}

func fieldsOf(t *lang.Type) []Member {
	out := make([]Member, 0, len(t.Fields))
	for name, field := range t.Fields {
		out = append(out, Member{Name: name, Kind: MemberField, Var: field})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CompleteAt resolves the members offered after the chain ending at the
// view's position. It reports false when no '.' precedes the cursor, in
// which case the caller falls back to plain identifier completion.
func CompleteAt(view *lang.ScopedView) ([]Member, bool) {
	tokens := ChainAt(view.Text, view.Position)
	if len(tokens) == 0 {
		return nil, false
	}
	base := tokens[len(tokens)-1]
	return ResolveChain(view, base, tokens[:len(tokens)-1]), true
}
