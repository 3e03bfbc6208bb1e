package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cstyle/internal/engine/lang"
)

func memberNames(ms []Member) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Name)
	}
	return out
}

func sampleView(text string, pos lang.Position) *lang.ScopedView {
	ps := &lang.ParseState{
		Text:    text,
		Symbols: lang.NewSymbolTable(),
		Global:  lang.NewScope(),
	}
	ps.Symbols.Types["vec3"] = &lang.Type{Builtin: true, Fields: map[string]*lang.Var{
		"x": {PrimaryType: "float"},
		"y": {PrimaryType: "float"},
		"z": {PrimaryType: "float"},
	}}
	ps.Symbols.Types["S"] = &lang.Type{Desc: "struct", Fields: map[string]*lang.Var{
		"color": {PrimaryType: "vec3"},
		"m":     {PrimaryType: "vec3", Qualifiers: []string{"[]"}},
	}}
	ps.Global.Declare("s", &lang.Var{PrimaryType: "S"})
	ps.Global.Declare("a", &lang.Var{PrimaryType: "vec3", Qualifiers: []string{"[]", "[]"}})
	ps.Global.Declare("n", &lang.Var{PrimaryType: "int"})
	return lang.ViewAt(ps, pos)
}

func TestResolveChainStructFields(t *testing.T) {
	view := sampleView("", lang.Position{})

	got := ResolveChain(view, "s", []string{})
	assert.Equal(t, []string{"color", "m"}, memberNames(got))
	assert.Equal(t, MemberField, got[0].Kind)
	require.NotNil(t, got[0].Var)
	assert.Equal(t, "vec3", got[0].Var.PrimaryType)

	got = ResolveChain(view, "s", []string{"color"})
	assert.Equal(t, []string{"x", "y", "z"}, memberNames(got))
}

func TestResolveChainArrayDepth(t *testing.T) {
	view := sampleView("", lang.Position{})

	tests := []struct {
		name  string
		base  string
		chain []string
		want  []string
	}{
		{name: "unindexed array offers length", base: "a", chain: []string{}, want: []string{LengthMember}},
		{name: "partially indexed array offers length", base: "a", chain: []string{"[]"}, want: []string{LengthMember}},
		{name: "fully indexed array offers fields", base: "a", chain: []string{"[]", "[]"}, want: []string{"x", "y", "z"}},
		{name: "over indexed array is empty", base: "a", chain: []string{"[]", "[]", "[]"}, want: []string{}},
		{name: "indexing a scalar is empty", base: "s", chain: []string{"[]"}, want: []string{}},
		{name: "array field then index", base: "s", chain: []string{"[]", "m"}, want: []string{"x", "y", "z"}},
		{name: "array field unindexed", base: "s", chain: []string{"m"}, want: []string{LengthMember}},
		{name: "unknown field", base: "s", chain: []string{"nope"}, want: []string{}},
		{name: "unknown base", base: "ghost", chain: []string{}, want: []string{}},
		{name: "type without fields table", base: "n", chain: []string{}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, memberNames(ResolveChain(view, tt.base, tt.chain)))
		})
	}
}

func TestResolveChainLengthKind(t *testing.T) {
	view := sampleView("", lang.Position{})
	got := ResolveChain(view, "a", nil)
	require.Len(t, got, 1)
	assert.Equal(t, MemberLength, got[0].Kind)
	assert.Nil(t, got[0].Var)
}

func TestWalkDoesNotModifyChain(t *testing.T) {
	view := sampleView("", lang.Position{})
	chain := []string{"[]", "m"}
	ResolveChain(view, "s", chain)
	assert.Equal(t, []string{"[]", "m"}, chain)
}

func TestCompleteAt(t *testing.T) {
	text := "s.color.\nplain"
	members, ok := CompleteAt(sampleView(text, lang.Position{Line: 0, Character: 8}))
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y", "z"}, memberNames(members))

	_, ok = CompleteAt(sampleView(text, lang.Position{Line: 1, Character: 5}))
	assert.False(t, ok)
}
