package parser

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cstyle/internal/engine/lang"
	"cstyle/internal/shared/observability"
)

// Builder produces ParseStates from document text.
type Builder struct {
	parser *Parser
}

func NewBuilder(p *Parser) *Builder {
	return &Builder{parser: p}
}

func (b *Builder) Parser() *Parser {
	return b.parser
}

// Build parses text and extracts its symbols. It never fails: when no tree
// can be produced the state carries builtins only and a nil Tree.
func (b *Builder) Build(ctx context.Context, uri, text string, facts *lang.FactTable) *lang.ParseState {
	ctx, span := observability.Tracer.Start(ctx, "parser.Build", trace.WithAttributes(
		attribute.String("uri", uri),
	))
	defer span.End()

	source := []byte(text)
	tree, err := b.parser.Parse(ctx, source)
	if err != nil {
		slog.Debug("document could not be parsed", "uri", uri, "error", err)
		tree = nil
	}

	start := time.Now()
	ex := Extract(tree, uri, facts)
	observability.ExtractionDuration.Observe(time.Since(start).Seconds())
	if ex.Skipped > 0 {
		observability.ExtractionSkippedTotal.Add(float64(ex.Skipped))
		slog.Debug("skipped malformed declarations", "uri", uri, "count", ex.Skipped)
	}
	span.SetAttributes(
		attribute.Int("types", len(ex.Symbols.Types)),
		attribute.Int("functions", len(ex.Symbols.Functions)),
		attribute.Int("skipped", ex.Skipped),
	)

	return &lang.ParseState{
		URI:      uri,
		Text:     text,
		Tree:     tree,
		Symbols:  ex.Symbols,
		Keywords: ex.Keywords,
		Global:   ex.Global,
	}
}
