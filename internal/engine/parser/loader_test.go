package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cstyle/internal/core/errors"
	"cstyle/internal/engine/syntax"
)

func TestGrammarLoader_DefaultsToAllGrammars(t *testing.T) {
	gl, err := NewGrammarLoader()
	require.NoError(t, err)
	assert.Equal(t, []string{GrammarC, GrammarCPP}, gl.Grammars())
	assert.Equal(t, KnownGrammars(), gl.Grammars())
}

func TestGrammarLoader_UnknownGrammar(t *testing.T) {
	_, err := NewGrammarLoader("cobol")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestGrammarLoader_LanguageNotLoaded(t *testing.T) {
	gl, err := NewGrammarLoader(GrammarC)
	require.NoError(t, err)

	_, err = gl.Language(GrammarCPP)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))

	lang, err := gl.Language(GrammarC)
	require.NoError(t, err)
	assert.NotNil(t, lang)
}

func TestGrammarLoader_GrammarForPath(t *testing.T) {
	gl, err := NewGrammarLoader()
	require.NoError(t, err)

	assert.Equal(t, GrammarC, gl.GrammarForPath("/src/main.c"))
	assert.Equal(t, GrammarC, gl.GrammarForPath("/src/shared.H"))
	assert.Equal(t, GrammarCPP, gl.GrammarForPath("/src/app.cpp"))
	assert.Equal(t, "", gl.GrammarForPath("/src/README.md"))
	assert.Contains(t, gl.SupportedExtensions(), ".hpp")
}

func TestParser_ParseCopiesTree(t *testing.T) {
	gl, err := NewGrammarLoader(GrammarC)
	require.NoError(t, err)
	p, err := NewParser(gl, GrammarC)
	require.NoError(t, err)
	assert.Equal(t, GrammarC, p.Grammar())

	tree, err := p.Parse(context.Background(), []byte("int counter[4];\n"))
	require.NoError(t, err)
	require.NotNil(t, tree.Root)
	assert.False(t, tree.HasErrors)
	assert.Equal(t, "translation_unit", tree.Root.Kind())

	var decl syntax.Node
	syntax.Walk(tree.Root, func(n syntax.Node) bool {
		if n.Kind() == "declaration" {
			decl = n
			return false
		}
		return true
	})
	require.NotNil(t, decl)
	assert.Equal(t, "int", decl.ChildByField("type").Text())
	declarator := decl.ChildByField("declarator")
	require.NotNil(t, declarator)
	assert.Equal(t, "array_declarator", declarator.Kind())
	assert.Equal(t, "counter", declarator.ChildByField("declarator").Text())
	assert.Zero(t, p.pool.busy())
}

func TestParser_ParseFlagsErrors(t *testing.T) {
	gl, err := NewGrammarLoader(GrammarC)
	require.NoError(t, err)
	p, err := NewParser(gl, GrammarC)
	require.NoError(t, err)

	tree, err := p.Parse(context.Background(), []byte("int main( {\n"))
	require.NoError(t, err)
	assert.True(t, tree.HasErrors)

	invalid := 0
	syntax.Walk(tree.Root, func(n syntax.Node) bool {
		if n.IsError() {
			invalid++
		}
		return true
	})
	assert.Positive(t, invalid)
}
