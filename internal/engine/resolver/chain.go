// Package resolver turns the text around a cursor into the symbols it names:
// the word under the cursor, the member-access chain before it, and the
// fields reachable through that chain.
package resolver

import (
	"cstyle/internal/engine/lang"
)

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func clamp(character, length int) int {
	if character < 0 {
		return 0
	}
	if character > length {
		return length
	}
	return character
}

// WordAt returns the identifier that touches pos, or "" when there is none.
func WordAt(text string, pos lang.Position) string {
	line := lang.LineAt(text, pos.Line)
	start := clamp(pos.Character, len(line))
	end := start
	for start > 0 && isWordChar(line[start-1]) {
		start--
	}
	for end < len(line) && isWordChar(line[end]) {
		end++
	}
	return line[start:end]
}

// ChainAt tokenizes the access chain that ends at pos.
func ChainAt(text string, pos lang.Position) []string {
	return TokenizeChainBefore(lang.LineAt(text, pos.Line), pos.Character)
}

// TokenizeChainBefore decomposes the member-access expression ending at
// character into tokens, innermost first: "a.b[1].c" with the cursor after
// "c" yields ["[]", "b", "a"]. The identifier under the cursor is the one
// being completed and is not included. Each balanced bracket group becomes
// one "[]" token. An empty result means no '.' precedes the cursor.
func TokenizeChainBefore(line string, character int) []string {
	tokens := []string{}
	pos := clamp(character, len(line))

	scanIdent(line, &pos)
	for pos > 0 && line[pos-1] == '.' {
		pos--
		for scanBrackets(line, &pos) {
			tokens = append(tokens, lang.ArrayQualifier)
		}
		tokens = append(tokens, scanIdent(line, &pos))
	}
	return tokens
}

func scanIdent(line string, pos *int) string {
	end := *pos
	for *pos > 0 && isWordChar(line[*pos-1]) {
		*pos--
	}
	return line[*pos:end]
}

// scanBrackets consumes one balanced "[...]" group ending at pos. On an
// unbalanced group it reports false and leaves pos at the line start.
func scanBrackets(line string, pos *int) bool {
	if *pos <= 0 || line[*pos-1] != ']' {
		return false
	}
	balance := 0
	for *pos > 0 {
		*pos--
		switch line[*pos] {
		case ']':
			balance++
		case '[':
			balance--
		}
		if balance == 0 {
			return true
		}
	}
	return false
}
