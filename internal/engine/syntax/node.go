// Package syntax defines the grammar-agnostic concrete syntax tree consumed by
// the symbol extractor and the presentation providers. Any parser that can
// produce values satisfying Node can be substituted for tree-sitter.
package syntax

// Point is a zero-based row/column pair. Column is a byte offset in the row.
type Point struct {
	Row    int
	Column int
}

// Before reports whether p sorts strictly before o.
func (p Point) Before(o Point) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Column < o.Column)
}

type Span struct {
	Start Point
	End   Point
}

// Contains reports whether p lies within the span, inclusive at both ends.
func (s Span) Contains(p Point) bool {
	return !p.Before(s.Start) && !s.End.Before(p)
}

// Node is a read-only view of one syntax tree node.
type Node interface {
	Kind() string
	// ChildByField returns the first child stored under the named field, or nil.
	ChildByField(name string) Node
	// ChildrenByField returns every child stored under the named field.
	ChildrenByField(name string) []Node
	Children() []Node
	Span() Span
	Text() string
	// IsError reports parser error recovery nodes and inserted missing nodes.
	IsError() bool
}

// Tree is a parsed document.
type Tree struct {
	Root Node
	// HasErrors is set when any node in the tree is an error or missing node.
	HasErrors bool
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		Walk(child, fn)
	}
}

// DescendantAt returns the smallest node whose span contains p, or nil when p
// lies outside root.
func DescendantAt(root Node, p Point) Node {
	if root == nil || !root.Span().Contains(p) {
		return nil
	}
	current := root
	for {
		var next Node
		for _, child := range current.Children() {
			if child.Span().Contains(p) {
				next = child
				break
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}

// Enclosing walks from the smallest node containing p toward the root and
// returns the first node of the given kind.
func Enclosing(root Node, p Point, kind string) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if !n.Span().Contains(p) {
			return false
		}
		if n.Kind() == kind {
			found = n
		}
		return true
	})
	return found
}
