package syntax

// Element is an immutable, Go-owned Node. Parsers copy their native trees
// into Elements so a Tree can outlive the parser that produced it.
type Element struct {
	kind      string
	field     string
	span      Span
	startByte int
	endByte   int
	invalid   bool
	source    []byte
	children  []*Element
}

// NewElement builds a node covering source[startByte:endByte]. The source
// slice is shared with every element of the same tree and must not change.
func NewElement(kind string, source []byte, startByte, endByte int, span Span) *Element {
	if startByte < 0 {
		startByte = 0
	}
	if endByte > len(source) {
		endByte = len(source)
	}
	if endByte < startByte {
		endByte = startByte
	}
	return &Element{
		kind:      kind,
		span:      span,
		startByte: startByte,
		endByte:   endByte,
		source:    source,
	}
}

// Append adds child under field (empty for unnamed positions) and returns e.
func (e *Element) Append(field string, child *Element) *Element {
	child.field = field
	e.children = append(e.children, child)
	return e
}

// MarkInvalid flags e as an error or missing node.
func (e *Element) MarkInvalid() *Element {
	e.invalid = true
	return e
}

func (e *Element) Kind() string { return e.kind }

func (e *Element) Field() string { return e.field }

func (e *Element) Span() Span { return e.span }

func (e *Element) IsError() bool { return e.invalid }

func (e *Element) Text() string {
	return string(e.source[e.startByte:e.endByte])
}

func (e *Element) ChildByField(name string) Node {
	for _, child := range e.children {
		if child.field == name {
			return child
		}
	}
	return nil
}

func (e *Element) ChildrenByField(name string) []Node {
	var out []Node
	for _, child := range e.children {
		if child.field == name {
			out = append(out, child)
		}
	}
	return out
}

func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	for i, child := range e.children {
		out[i] = child
	}
	return out
}
