package lspext

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
)

// Mapper converts document positions, whose columns are byte offsets, to
// and from the negotiated wire encoding. The zero value is the utf-8
// identity mapping.
type Mapper struct {
	utf16 bool
	lines []string
}

// NewMapper returns a mapper for one document version. text is only kept
// when columns need converting.
func NewMapper(encoding, text string) Mapper {
	if encoding != EncodingUTF16 {
		return Mapper{}
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return Mapper{utf16: true, lines: lines}
}

func (m Mapper) line(n int) string {
	if n < 0 || n >= len(m.lines) {
		return ""
	}
	return m.lines[n]
}

// Position converts a document position to its wire form.
func (m Mapper) Position(p lang.Position) protocol.Position {
	col := p.Character
	if m.utf16 {
		col = utf16Units(m.line(p.Line), col)
	}
	return protocol.Position{Line: uinteger(p.Line), Character: uinteger(col)}
}

func (m Mapper) Range(r lang.Range) protocol.Range {
	return protocol.Range{Start: m.Position(r.Start), End: m.Position(r.End)}
}

func (m Mapper) Location(loc lang.Location) protocol.Location {
	return protocol.Location{URI: loc.URI, Range: m.Range(loc.Range)}
}

// FromPosition converts a wire position to a document position.
func (m Mapper) FromPosition(p protocol.Position) lang.Position {
	line, col := int(p.Line), int(p.Character)
	if m.utf16 {
		col = byteOffset(m.line(line), col)
	}
	return lang.Position{Line: line, Character: col}
}

func (m Mapper) FromRange(r protocol.Range) lang.Range {
	return lang.Range{Start: m.FromPosition(r.Start), End: m.FromPosition(r.End)}
}

// utf16Units counts the UTF-16 code units in the first n bytes of line.
// Columns past the end of the line keep their overshoot.
func utf16Units(line string, n int) int {
	over := 0
	if n > len(line) {
		over, n = n-len(line), len(line)
	}
	units := 0
	for _, r := range line[:n] {
		units += utf16.RuneLen(r)
	}
	return units + over
}

// byteOffset is the inverse of utf16Units. A column inside a surrogate pair
// snaps to the start of its rune.
func byteOffset(line string, units int) int {
	for i, r := range line {
		w := utf16.RuneLen(r)
		if units < w {
			return i
		}
		units -= w
	}
	return len(line) + units
}

func uinteger(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n)
}
