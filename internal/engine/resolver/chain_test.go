package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"cstyle/internal/engine/lang"
)

func TestTokenizeChainBefore(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"myObj.", []string{"myObj"}},
		{"  spaceBefore.textAfter", []string{"spaceBefore"}},
		{"not  spaceBefore.textAfter", []string{"spaceBefore"}},
		{"first.then.next.", []string{"next", "then", "first"}},
		{"", []string{}},
		{"a ", []string{}},
		{"a. ", []string{}},
		{"first[3].next", []string{"[]", "first"}},
		{"complex[data[3]].next[2][3].", []string{"[]", "[]", "next", "[]", "complex"}},
		{"].next", []string{""}},
		{"x = light.color.r", []string{"color", "light"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenizeChainBefore(tt.line, len(tt.line)))
		})
	}
}

func TestTokenizeChainBeforeClampsCursor(t *testing.T) {
	assert.Equal(t, []string{"a"}, TokenizeChainBefore("a.b", 99))
	assert.Equal(t, []string{}, TokenizeChainBefore("a.b", -4))
	assert.NotPanics(t, func() { TokenizeChainBefore("[[[.x", 5) })
	assert.NotPanics(t, func() { TokenizeChainBefore("]]].", 4) })
}

// Rebuilding "base.tok.tok" from tokens and tokenizing it again must
// return the same tokens.
func TestTokenizeChainRoundTrip(t *testing.T) {
	chains := [][]string{
		{"a"},
		{"c", "b", "a"},
		{"[]", "b", "[]", "[]", "a"},
	}
	for _, chain := range chains {
		var b strings.Builder
		for i := len(chain) - 1; i >= 0; i-- {
			if chain[i] == lang.ArrayQualifier {
				b.WriteString("[0]")
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(chain[i])
		}
		b.WriteString(".cur")
		line := b.String()
		assert.Equal(t, chain, TokenizeChainBefore(line, len(line)), line)
	}
}

func TestWordAt(t *testing.T) {
	text := "void main(vec2 param_var) {\n    MyStruct cust_var;\n}"

	assert.Equal(t, "main", WordAt(text, lang.Position{Line: 0, Character: 6}))
	assert.Equal(t, "main", WordAt(text, lang.Position{Line: 0, Character: 9}))
	assert.Equal(t, "void", WordAt(text, lang.Position{Line: 0, Character: 0}))
	assert.Equal(t, "cust_var", WordAt(text, lang.Position{Line: 1, Character: 17}))
	assert.Equal(t, "", WordAt(text, lang.Position{Line: 1, Character: 2}))
	assert.Equal(t, "", WordAt(text, lang.Position{Line: 7, Character: 2}))
	assert.Equal(t, "", WordAt(text, lang.Position{Line: 2, Character: 50}))
}

func TestChainAt(t *testing.T) {
	text := "int x;\nfoo.bar.\n"
	assert.Equal(t, []string{"bar", "foo"}, ChainAt(text, lang.Position{Line: 1, Character: 8}))
	assert.Equal(t, []string{}, ChainAt(text, lang.Position{Line: 0, Character: 5}))
}
