package parser

import (
	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/syntax"
)

// NodeHandler processes one node kind. Returning true tells the walker the
// handler already visited the node's children.
type NodeHandler func(ctx *ExtractionContext, node syntax.Node) bool

// ExtractionContext carries the tables being filled and the scope that
// declarations currently land in.
type ExtractionContext struct {
	URI     string
	Symbols *lang.SymbolTable
	Scope   *lang.Scope
	// Skipped counts nodes that lacked an expected child.
	Skipped int

	engine *ExtractorEngine
}

// Walk continues the traversal at node with the context's current scope.
func (c *ExtractionContext) Walk(node syntax.Node) {
	c.engine.Walk(c, node)
}

func (c *ExtractionContext) WalkChildren(node syntax.Node) {
	c.engine.WalkChildren(c, node)
}

func (c *ExtractionContext) Location(node syntax.Node) *lang.Location {
	return lang.LocationOf(node, c.URI)
}

// skip records a malformed node. Extraction always continues past it.
func (c *ExtractionContext) skip() {
	c.Skipped++
}

// ExtractorEngine walks the syntax tree and dispatches node handlers by kind.
type ExtractorEngine struct {
	handlers map[string]NodeHandler
}

func NewExtractorEngine(handlers map[string]NodeHandler) *ExtractorEngine {
	return &ExtractorEngine{handlers: handlers}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node syntax.Node) {
	if node == nil {
		return
	}
	if handler, ok := e.handlers[node.Kind()]; ok {
		if handler(ctx, node) {
			return
		}
	}
	e.WalkChildren(ctx, node)
}

func (e *ExtractorEngine) WalkChildren(ctx *ExtractionContext, node syntax.Node) {
	for _, child := range node.Children() {
		e.Walk(ctx, child)
	}
}
