// # internal/engine/parser/loader.go
package parser

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"cstyle/internal/core/errors"
	"cstyle/internal/shared/util"
)

// LanguageSpec describes one C-like grammar the server can load.
type LanguageSpec struct {
	Name       string
	Extensions []string
}

// Grammar identifiers.
const (
	GrammarC   = "c"
	GrammarCPP = "cpp"
)

var builtinGrammars = map[string]LanguageSpec{
	GrammarC:   {Name: GrammarC, Extensions: []string{".c", ".h"}},
	GrammarCPP: {Name: GrammarCPP, Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h"}},
}

// KnownGrammars lists the grammar identifiers that can be loaded.
func KnownGrammars() []string {
	return util.SortedStringKeys(builtinGrammars)
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

// NewGrammarLoader loads the named grammars, all known ones when none are
// given.
func NewGrammarLoader(grammars ...string) (*GrammarLoader, error) {
	if len(grammars) == 0 {
		grammars = KnownGrammars()
	}

	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		registry:  make(map[string]LanguageSpec),
	}
	for _, id := range grammars {
		id = strings.ToLower(strings.TrimSpace(id))
		spec, ok := builtinGrammars[id]
		if !ok {
			return nil, errors.AddContext(
				errors.New(errors.CodeNotSupported, "grammar is not available"),
				errors.CtxGrammar, id,
			)
		}
		switch id {
		case GrammarC:
			gl.languages[id] = sitter.NewLanguage(tree_sitter_c.Language())
		case GrammarCPP:
			gl.languages[id] = sitter.NewLanguage(tree_sitter_cpp.Language())
		}
		gl.registry[id] = spec
	}
	return gl, nil
}

// Language returns the loaded grammar for id.
func (gl *GrammarLoader) Language(id string) (*sitter.Language, error) {
	lang, ok := gl.languages[id]
	if !ok {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotFound, "grammar not loaded"),
			errors.CtxGrammar, id,
		)
	}
	return lang, nil
}

func (gl *GrammarLoader) Grammars() []string {
	return util.SortedStringKeys(gl.registry)
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		for _, ext := range spec.Extensions {
			set[ext] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}

// GrammarForPath picks a loaded grammar by file extension. C wins over C++
// for extensions both claim. It returns "" for unknown extensions.
func (gl *GrammarLoader) GrammarForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	for _, id := range gl.Grammars() {
		for _, candidate := range gl.registry[id].Extensions {
			if candidate == ext {
				return id
			}
		}
	}
	return ""
}
