package parser

import (
	"context"
	"sync"
	"sync/atomic"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// parserPool keeps grammar-bound tree-sitter parsers between reparses of
// open documents. A parser is borrowed for exactly one parse call and never
// handed out.
type parserPool struct {
	pool     sync.Pool
	inFlight atomic.Int32
}

// newParserPool binds every pooled parser to lang, which must stay valid for
// the lifetime of the pool.
func newParserPool(lang *sitter.Language) *parserPool {
	p := &parserPool{}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		_ = sp.SetLanguage(lang)
		return sp
	}
	return p
}

// parse parses source on a pooled parser. It returns nil when ctx ends
// mid-parse, which happens when a newer edit supersedes the document.
func (p *parserPool) parse(ctx context.Context, source []byte) *sitter.Tree {
	sp := p.pool.Get().(*sitter.Parser)
	p.inFlight.Add(1)
	defer func() {
		p.inFlight.Add(-1)
		// A cancelled parse leaves state behind that the next parse would resume.
		sp.Reset()
		p.pool.Put(sp)
	}()

	length := len(source)
	read := func(i int, _ sitter.Point) []byte {
		if i < length {
			return source[i:]
		}
		return []byte{}
	}
	cancelled := func(sitter.ParseState) bool { return ctx.Err() != nil }
	return sp.ParseWithOptions(read, nil, &sitter.ParseOptions{ProgressCallback: cancelled})
}

// busy reports how many parses are running.
func (p *parserPool) busy() int {
	return int(p.inFlight.Load())
}
