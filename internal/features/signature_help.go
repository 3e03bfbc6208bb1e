package features

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
	"cstyle/internal/shared/util"
)

// Signature help trigger characters.
var (
	SignatureTriggers   = []string{"(", ","}
	SignatureRetriggers = []string{")"}
)

// SignatureHelp shows the signature of the call enclosing the cursor with
// the active parameter highlighted.
func SignatureHelp(view *lang.ScopedView) *protocol.SignatureHelp {
	name, active, ok := callAtTree(view.ParseState, view.Position)
	if !ok {
		name, active, ok = callAtLine(view.Line(view.Position.Line), view.Position.Character)
	}
	if !ok {
		return nil
	}
	f, found := view.Symbols.Functions[name]
	if !found {
		return nil
	}

	sig := protocol.SignatureInformation{Label: f.Label(name)}
	if f.Desc != "" {
		sig.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: f.Desc}
	}
	for _, p := range f.Params {
		sig.Parameters = append(sig.Parameters, protocol.ParameterInformation{Label: lang.ParamLabel(p)})
	}
	if len(f.Params) > 0 && active >= len(f.Params) {
		active = len(f.Params) - 1
	}
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{sig},
		ActiveSignature: util.Ptr(protocol.UInteger(0)),
		ActiveParameter: util.Ptr(protocol.UInteger(active)),
	}
}

// callAtTree finds the innermost call whose argument list contains pos.
func callAtTree(state *lang.ParseState, pos lang.Position) (string, int, bool) {
	if state.Tree == nil {
		return "", 0, false
	}
	point := syntax.Point{Row: pos.Line, Column: pos.Character}

	var name string
	var active int
	found := false
	syntax.Walk(state.Tree.Root, func(n syntax.Node) bool {
		if !n.Span().Contains(point) {
			return false
		}
		if n.Kind() != "call_expression" {
			return true
		}
		fn := n.ChildByField("function")
		args := n.ChildByField("arguments")
		if fn == nil || args == nil || fn.Kind() != "identifier" {
			return true
		}
		span := args.Span()
		if !span.Start.Before(point) || span.End.Before(point) {
			return true
		}
		name, active, found = fn.Text(), 0, true
		for _, child := range args.Children() {
			if child.Kind() == "," && child.Span().Start.Before(point) {
				active++
			}
		}
		return true
	})
	return name, active, found
}

// callAtLine scans backwards from the cursor for an unclosed '(' and the
// identifier before it. It serves half-typed calls the grammar could not
// recover.
func callAtLine(line string, character int) (string, int, bool) {
	if character > len(line) {
		character = len(line)
	}
	depth, commas := 0, 0
	for i := character - 1; i >= 0; i-- {
		switch line[i] {
		case ')':
			depth++
		case ',':
			if depth == 0 {
				commas++
			}
		case '(':
			if depth > 0 {
				depth--
				continue
			}
			end := i
			for end > 0 && line[end-1] == ' ' {
				end--
			}
			start := end
			for start > 0 && isIdentByte(line[start-1]) {
				start--
			}
			if start == end {
				return "", 0, false
			}
			return line[start:end], commas, true
		}
	}
	return "", 0, false
}

func isIdentByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
