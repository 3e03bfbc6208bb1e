package lang

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "cstyle/internal/core/errors"
)

const jsonFacts = `{
  "types": {
    "vec3": {"desc": "three component vector", "fields": {"x": {"primary_type": "float"}}},
    "Light": {"builtin": false, "desc": "struct"}
  },
  "builtin_vars": {"gl_Position": {"primary_type": "vec4"}},
  "functions": {"dot": {"return_type": "float", "params": [{"name": "a", "primary_type": "vec3"}, {"name": "b", "primary_type": "vec3"}]}},
  "defines": {"PI": {"insert_text": "3.14"}},
  "constants": ["true"],
  "preprocessor": ["#define"],
  "control": ["if", "for"]
}`

const yamlFacts = `
types:
  vec3:
    desc: three component vector
    fields:
      x:
        primary_type: float
builtin_vars:
  gl_FragCoord:
    primary_type: vec4
    unused: true
control: [while]
`

func TestDecodeFactTableJSON(t *testing.T) {
	ft, err := DecodeFactTable([]byte(jsonFacts), FormatJSON)
	require.NoError(t, err)

	require.Contains(t, ft.Types, "vec3")
	assert.True(t, ft.Types["vec3"].Builtin, "types default to builtin")
	assert.False(t, ft.Types["Light"].Builtin)
	assert.Nil(t, ft.Types["vec3"].Fields["x"].Qualifiers)
	assert.NotNil(t, ft.Types["Light"].Fields)

	require.Contains(t, ft.BuiltinVars, "gl_Position")
	assert.False(t, ft.BuiltinVars["gl_Position"].Unused)
	assert.Nil(t, ft.BuiltinVars["gl_Position"].Declaration)

	require.Contains(t, ft.Functions, "dot")
	require.Len(t, ft.Functions["dot"].Params, 2)
	assert.Equal(t, "a", ft.Functions["dot"].Params[0].Name)
	assert.Equal(t, "3.14", ft.Defines["PI"].InsertText)

	assert.Equal(t, []Keyword{
		{Kind: KeywordConstant, Label: "true"},
		{Kind: KeywordKeyword, Label: "#define"},
		{Kind: KeywordKeyword, Label: "if"},
		{Kind: KeywordKeyword, Label: "for"},
	}, ft.Keywords())
}

func TestDecodeFactTableYAML(t *testing.T) {
	ft, err := DecodeFactTable([]byte(yamlFacts), FormatYAML)
	require.NoError(t, err)

	assert.True(t, ft.Types["vec3"].Builtin)
	assert.Equal(t, "float", ft.Types["vec3"].Fields["x"].PrimaryType)
	assert.True(t, ft.BuiltinVars["gl_FragCoord"].Unused)
	assert.Empty(t, ft.Functions)
	assert.Empty(t, ft.Defines)
	assert.Equal(t, []Keyword{{Kind: KeywordKeyword, Label: "while"}}, ft.Keywords())
}

func TestDecodeFactTableRejectsGarbage(t *testing.T) {
	_, err := DecodeFactTable([]byte("{not json"), FormatJSON)
	require.Error(t, err)
	assert.True(t, domainerr.IsCode(err, domainerr.CodeValidationError))

	_, err = DecodeFactTable([]byte("{}"), "xml")
	assert.True(t, domainerr.IsCode(err, domainerr.CodeNotSupported))
}

func TestLoadFactTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glsl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlFacts), 0o644))

	ft, err := LoadFactTable(path)
	require.NoError(t, err)
	assert.Equal(t, "glsl", ft.Name)

	_, err = LoadFactTable(filepath.Join(dir, "missing.json"))
	assert.True(t, domainerr.IsCode(err, domainerr.CodeNotFound))

	_, err = LoadFactTable(filepath.Join(dir, "facts.ini"))
	assert.True(t, domainerr.IsCode(err, domainerr.CodeNotSupported))
}

func TestDefaultFactTable(t *testing.T) {
	ft, err := DefaultFactTable()
	require.NoError(t, err)

	assert.Equal(t, "c", ft.Name)
	require.Contains(t, ft.Types, "void")
	assert.Equal(t, "for functions that do not return a value", ft.Types["void"].Desc)
	assert.True(t, ft.Types["void"].Builtin)
	assert.Contains(t, ft.Types["div_t"].Fields, "quot")
	assert.Equal(t, []string{"*"}, ft.BuiltinVars["stdout"].Qualifiers)
	assert.Len(t, ft.Functions["memcpy"].Params, 3)
	assert.NotEmpty(t, ft.Keywords())

	_, err = ResolveFactTable("glsl", "")
	assert.True(t, domainerr.IsCode(err, domainerr.CodeNotFound))

	same, err := ResolveFactTable("c", "")
	require.NoError(t, err)
	assert.Same(t, ft, same)
}
