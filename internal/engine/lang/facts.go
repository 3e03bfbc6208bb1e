package lang

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	domainerr "cstyle/internal/core/errors"
)

// FactTable is the static description of a language: builtin types,
// functions, macros, variables and keyword lists. It is read-only once
// loaded and shared by every document.
type FactTable struct {
	Name         string
	BuiltinVars  map[string]*Var
	Types        map[string]*Type
	Functions    map[string]*Func
	Defines      map[string]*Define
	Control      []string
	Constants    []string
	Preprocessor []string
}

// Keywords lists constants first, then preprocessor words, then control
// words.
func (ft *FactTable) Keywords() []Keyword {
	out := make([]Keyword, 0, len(ft.Constants)+len(ft.Preprocessor)+len(ft.Control))
	for _, label := range ft.Constants {
		out = append(out, Keyword{Kind: KeywordConstant, Label: label})
	}
	for _, label := range ft.Preprocessor {
		out = append(out, Keyword{Kind: KeywordKeyword, Label: label})
	}
	for _, label := range ft.Control {
		out = append(out, Keyword{Kind: KeywordKeyword, Label: label})
	}
	return out
}

// EmptyFactTable returns a table with no builtins.
func EmptyFactTable() *FactTable {
	return &FactTable{
		BuiltinVars: map[string]*Var{},
		Types:       map[string]*Type{},
		Functions:   map[string]*Func{},
		Defines:     map[string]*Define{},
	}
}

type varFact struct {
	PrimaryType string   `json:"primary_type" toml:"primary_type" yaml:"primary_type"`
	Qualifiers  []string `json:"type_qualifier_list" toml:"type_qualifier_list" yaml:"type_qualifier_list"`
	Unused      *bool    `json:"unused" toml:"unused" yaml:"unused"`
}

type typeFact struct {
	Fields  map[string]varFact `json:"fields" toml:"fields" yaml:"fields"`
	Desc    string             `json:"desc" toml:"desc" yaml:"desc"`
	Builtin *bool              `json:"builtin" toml:"builtin" yaml:"builtin"`
}

type paramFact struct {
	Name        string   `json:"name" toml:"name" yaml:"name"`
	PrimaryType string   `json:"primary_type" toml:"primary_type" yaml:"primary_type"`
	Qualifiers  []string `json:"type_qualifier_list" toml:"type_qualifier_list" yaml:"type_qualifier_list"`
}

type funcFact struct {
	Params     []paramFact `json:"params" toml:"params" yaml:"params"`
	ReturnType string      `json:"return_type" toml:"return_type" yaml:"return_type"`
	Desc       string      `json:"desc" toml:"desc" yaml:"desc"`
}

type defineFact struct {
	InsertText string `json:"insert_text" toml:"insert_text" yaml:"insert_text"`
}

type factFile struct {
	BuiltinVars  map[string]varFact    `json:"builtin_vars" toml:"builtin_vars" yaml:"builtin_vars"`
	Types        map[string]typeFact   `json:"types" toml:"types" yaml:"types"`
	Functions    map[string]funcFact   `json:"functions" toml:"functions" yaml:"functions"`
	Defines      map[string]defineFact `json:"defines" toml:"defines" yaml:"defines"`
	Control      []string              `json:"control" toml:"control" yaml:"control"`
	Constants    []string              `json:"constants" toml:"constants" yaml:"constants"`
	Preprocessor []string              `json:"preprocessor" toml:"preprocessor" yaml:"preprocessor"`
}

// Supported fact table encodings.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatForPath picks the encoding from a file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", domainerr.AddContext(
			domainerr.Newf(domainerr.CodeNotSupported, "unsupported fact table extension %q", filepath.Ext(path)),
			domainerr.CtxPath, path,
		)
	}
}

// LoadFactTable reads and decodes a fact table file.
func LoadFactTable(path string) (*FactTable, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		code := domainerr.CodeInternal
		if os.IsNotExist(err) {
			code = domainerr.CodeNotFound
		}
		return nil, domainerr.AddContext(domainerr.Wrap(err, code, "read fact table"), domainerr.CtxPath, path)
	}
	ft, err := DecodeFactTable(data, format)
	if err != nil {
		return nil, domainerr.AddContext(err, domainerr.CtxPath, path)
	}
	ft.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ft, nil
}

// DecodeFactTable decodes data in the given format. Absent sections decode
// as empty, types default to builtin and builtin variables default to used.
func DecodeFactTable(data []byte, format string) (*FactTable, error) {
	var raw factFile
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatTOML:
		_, err = toml.Decode(string(data), &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, domainerr.Newf(domainerr.CodeNotSupported, "unsupported fact table format %q", format)
	}
	if err != nil {
		return nil, domainerr.Wrap(err, domainerr.CodeValidationError, "decode fact table")
	}
	return raw.build(), nil
}

func (raw factFile) build() *FactTable {
	ft := EmptyFactTable()
	for name, v := range raw.BuiltinVars {
		ft.BuiltinVars[name] = v.build(false)
	}
	for name, t := range raw.Types {
		lt := &Type{Fields: map[string]*Var{}, Desc: t.Desc, Builtin: true}
		if t.Builtin != nil {
			lt.Builtin = *t.Builtin
		}
		for field, v := range t.Fields {
			lt.Fields[field] = v.build(false)
		}
		ft.Types[name] = lt
	}
	for name, f := range raw.Functions {
		lf := &Func{ReturnType: f.ReturnType, Desc: f.Desc}
		for _, p := range f.Params {
			lf.Params = append(lf.Params, Param{
				Name: p.Name,
				Var:  &Var{PrimaryType: p.PrimaryType, Qualifiers: normalizeQualifiers(p.Qualifiers)},
			})
		}
		ft.Functions[name] = lf
	}
	for name, d := range raw.Defines {
		ft.Defines[name] = &Define{InsertText: d.InsertText}
	}
	ft.Control = append([]string(nil), raw.Control...)
	ft.Constants = append([]string(nil), raw.Constants...)
	ft.Preprocessor = append([]string(nil), raw.Preprocessor...)
	return ft
}

func (v varFact) build(defaultUnused bool) *Var {
	out := &Var{
		PrimaryType: v.PrimaryType,
		Qualifiers:  normalizeQualifiers(v.Qualifiers),
		Unused:      defaultUnused,
	}
	if v.Unused != nil {
		out.Unused = *v.Unused
	}
	return out
}

func normalizeQualifiers(qs []string) []string {
	if len(qs) == 0 {
		return nil
	}
	return append([]string(nil), qs...)
}

//go:embed facts/c.toml
var defaultCFacts []byte

var defaultFactTable = sync.OnceValues(func() (*FactTable, error) {
	ft, err := DecodeFactTable(defaultCFacts, FormatTOML)
	if err != nil {
		return nil, err
	}
	ft.Name = "c"
	return ft, nil
})

// DefaultFactTable returns the embedded table for plain C.
func DefaultFactTable() (*FactTable, error) {
	return defaultFactTable()
}

// ResolveFactTable loads path when set, otherwise the embedded table for the
// named language.
func ResolveFactTable(language, path string) (*FactTable, error) {
	if strings.TrimSpace(path) != "" {
		return LoadFactTable(path)
	}
	if language == "" || language == "c" {
		return DefaultFactTable()
	}
	return nil, domainerr.AddContext(
		domainerr.New(domainerr.CodeNotFound, "no builtin fact table; set language.facts_path"),
		domainerr.CtxLanguage, language,
	)
}
