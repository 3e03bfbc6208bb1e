// # internal/engine/parser/parser.go
package parser

import (
	"context"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cstyle/internal/core/errors"
	"cstyle/internal/engine/syntax"
	"cstyle/internal/shared/observability"
)

// Parser turns document text into Go-owned syntax trees using one grammar.
type Parser struct {
	grammar string
	pool    *parserPool
}

func NewParser(loader *GrammarLoader, grammar string) (*Parser, error) {
	lang, err := loader.Language(grammar)
	if err != nil {
		return nil, err
	}
	check := sitter.NewParser()
	defer check.Close()
	if err := check.SetLanguage(lang); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "grammar rejected by parser runtime"),
			errors.CtxGrammar, grammar,
		)
	}
	return &Parser{grammar: grammar, pool: newParserPool(lang)}, nil
}

func (p *Parser) Grammar() string {
	return p.grammar
}

// Parse parses source and copies the result into a syntax.Tree. The native
// tree is released before returning. A cancelled ctx stops the parse.
func (p *Parser) Parse(ctx context.Context, source []byte) (*syntax.Tree, error) {
	_, span := observability.Tracer.Start(ctx, "parser.Parse", trace.WithAttributes(
		attribute.String("grammar", p.grammar),
		attribute.Int("bytes", len(source)),
	))
	defer span.End()

	start := time.Now()
	tree := p.pool.parse(ctx, source)
	observability.ParsingDuration.WithLabelValues(p.grammar).Observe(time.Since(start).Seconds())

	if tree == nil {
		var err error
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Wrap(ctxErr, errors.CodeInvalidRequest, "parse cancelled")
		} else {
			observability.ParseFailuresTotal.WithLabelValues(p.grammar).Inc()
			err = errors.New(errors.CodeInternal, "parse failed")
		}
		err = errors.AddContext(err, errors.CtxGrammar, p.grammar)
		span.RecordError(err)
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	out := &syntax.Tree{
		Root:      snapshot(root, source),
		HasErrors: root.HasError(),
	}
	span.SetAttributes(attribute.Bool("has_errors", out.HasErrors))
	return out, nil
}

// snapshot copies n and its descendants. Field names are attached to each
// child so ChildByField works on the copy.
func snapshot(n *sitter.Node, source []byte) *syntax.Element {
	el := syntax.NewElement(n.Kind(), source, int(n.StartByte()), int(n.EndByte()), syntax.Span{
		Start: pointOf(n.StartPosition()),
		End:   pointOf(n.EndPosition()),
	})
	if n.IsError() || n.IsMissing() {
		el.MarkInvalid()
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		el.Append(n.FieldNameForChild(uint32(i)), snapshot(child, source))
	}
	return el
}

func pointOf(p sitter.Point) syntax.Point {
	return syntax.Point{Row: int(p.Row), Column: int(p.Column)}
}
