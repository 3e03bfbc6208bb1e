package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
	"cstyle/internal/lsp/lspext"
)

// TokenType indexes SemanticTokenLegend.
type TokenType uint32

const (
	TokenFunction TokenType = iota
	TokenNumber
	TokenMacro
	TokenParameter
	TokenStruct
)

var tokenTypeNames = []string{"function", "number", "macro", "parameter", "struct"}

// SemanticTokenLegend is advertised in the initialize result.
func SemanticTokenLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     append([]string(nil), tokenTypeNames...),
		TokenModifiers: []string{},
	}
}

// SemanticToken is one absolute token before delta encoding. Column and
// Length are in bytes.
type SemanticToken struct {
	Line   int
	Column int
	Length int
	Type   TokenType
}

// SemanticTokens classifies identifiers naming functions and macros, number
// literals, parameter names and user struct types, in source order.
func SemanticTokens(state *lang.ParseState) []SemanticToken {
	var out []SemanticToken
	if state == nil || state.Tree == nil {
		return out
	}
	collectTokens(state, state.Tree.Root, &out)
	return out
}

func collectTokens(state *lang.ParseState, node syntax.Node, out *[]SemanticToken) {
	if node == nil {
		return
	}
	for _, child := range node.Children() {
		switch child.Kind() {
		case "identifier":
			// One token per position: parameter, then function, then macro.
			name := child.Text()
			_, isFunc := state.Symbols.Functions[name]
			_, isMacro := state.Symbols.Defines[name]
			if node.Kind() == "parameter_declaration" {
				*out = append(*out, tokenAt(child, TokenParameter))
			} else if isFunc {
				*out = append(*out, tokenAt(child, TokenFunction))
			} else if isMacro {
				*out = append(*out, tokenAt(child, TokenMacro))
			}
		case "number_literal":
			*out = append(*out, tokenAt(child, TokenNumber))
		case "type_identifier":
			if t, ok := state.Symbols.Types[child.Text()]; ok && !t.Builtin {
				*out = append(*out, tokenAt(child, TokenStruct))
			}
		}
		collectTokens(state, child, out)
	}
}

func tokenAt(n syntax.Node, typ TokenType) SemanticToken {
	start := n.Span().Start
	return SemanticToken{Line: start.Row, Column: start.Column, Length: len(n.Text()), Type: typ}
}

// EncodeSemanticTokens applies the LSP relative encoding: each token is five
// integers (delta line, delta start, length, type, modifiers). Columns and
// lengths are converted through m.
func EncodeSemanticTokens(tokens []SemanticToken, m lspext.Mapper) protocol.SemanticTokens {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	var prevLine, prevCol protocol.UInteger
	for _, tok := range tokens {
		start := m.Position(lang.Position{Line: tok.Line, Character: tok.Column})
		end := m.Position(lang.Position{Line: tok.Line, Character: tok.Column + tok.Length})
		deltaLine := start.Line - prevLine
		deltaStart := start.Character
		if deltaLine == 0 {
			deltaStart = start.Character - prevCol
		}
		data = append(data, deltaLine, deltaStart, end.Character-start.Character, protocol.UInteger(tok.Type), 0)
		prevLine, prevCol = start.Line, start.Character
	}
	return protocol.SemanticTokens{Data: data}
}
