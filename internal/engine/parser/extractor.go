package parser

import (
	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
)

// Extraction is the outcome of one extraction pass.
type Extraction struct {
	Symbols  lang.SymbolTable
	Global   *lang.Scope
	Keywords []lang.Keyword
	// Skipped counts malformed nodes that contributed nothing.
	Skipped int
}

func newSymbolEngine() *ExtractorEngine {
	return NewExtractorEngine(map[string]NodeHandler{
		"declaration":          handleDeclaration,
		"type_definition":      handleTypeDefinition,
		"struct_specifier":     handleStruct,
		"union_specifier":      handleStruct,
		"function_definition":  handleFunctionDefinition,
		"preproc_def":          handleDefine,
		"preproc_function_def": handleDefine,
	})
}

// Extract builds the symbol tables and scope tree of a document in a single
// traversal. Builtins from facts are seeded first so document declarations
// with the same name replace them. A nil tree yields builtins only.
func Extract(tree *syntax.Tree, uri string, facts *lang.FactTable) *Extraction {
	if facts == nil {
		facts = lang.EmptyFactTable()
	}

	symbols := seedSymbols(facts)
	global := lang.NewScope()
	for name, v := range facts.BuiltinVars {
		global.Declare(name, v.Clone())
	}

	ctx := &ExtractionContext{
		URI:     uri,
		Symbols: &symbols,
		Scope:   global,
		engine:  newSymbolEngine(),
	}
	if tree != nil && tree.Root != nil {
		ctx.Walk(tree.Root)
	}

	return &Extraction{
		Symbols:  symbols,
		Global:   global,
		Keywords: facts.Keywords(),
		Skipped:  ctx.Skipped,
	}
}

// seedSymbols copies the builtin tables. Functions are copied by value
// because the analysis pass appends call-site references to them.
func seedSymbols(facts *lang.FactTable) lang.SymbolTable {
	symbols := lang.NewSymbolTable()
	for name, t := range facts.Types {
		symbols.Types[name] = t
	}
	for name, f := range facts.Functions {
		cp := *f
		cp.References = nil
		symbols.Functions[name] = &cp
	}
	for name, d := range facts.Defines {
		symbols.Defines[name] = d
	}
	return symbols
}
