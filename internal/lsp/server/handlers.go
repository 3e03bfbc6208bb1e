package server

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"cstyle/internal/data/symbols"
	"cstyle/internal/engine/lang"
	"cstyle/internal/features"
	"cstyle/internal/lsp/jsonrpc"
	"cstyle/internal/lsp/lspext"
	"cstyle/internal/shared/observability"
	"cstyle/internal/shared/util"
)

func (s *Server) registerHandlers() error {
	handlers := []struct {
		method  string
		handler Handler
	}{
		{protocol.MethodInitialize, s.initialize},
		{protocol.MethodShutdown, s.shutdownRequest},
		{protocol.MethodTextDocumentCompletion, s.completion},
		{protocol.MethodTextDocumentHover, s.hover},
		{protocol.MethodTextDocumentDefinition, s.definition},
		{protocol.MethodTextDocumentTypeDefinition, s.typeDefinition},
		{protocol.MethodTextDocumentFoldingRange, s.foldingRange},
		{protocol.MethodTextDocumentSemanticTokensFull, s.semanticTokens},
		{lspext.MethodTextDocumentInlayHint, s.inlayHint},
		{protocol.MethodTextDocumentCodeLens, s.codeLens},
		{protocol.MethodTextDocumentSignatureHelp, s.signatureHelp},
		{protocol.MethodTextDocumentDocumentSymbol, s.documentSymbol},
		{protocol.MethodWorkspaceSymbol, s.workspaceSymbol},
	}
	for _, h := range handlers {
		if err := s.registry.Register(h.method, h.handler); err != nil {
			return err
		}
	}
	return nil
}

// ----- lifecycle -----

func (s *Server) initialize(_ context.Context, raw json.RawMessage) (any, error) {
	var params protocol.InitializeParams
	var ext lspext.InitializeExtensions
	if len(raw) > 0 {
		if err := decodeParams(raw, &params); err != nil {
			return nil, err
		}
		if err := decodeParams(raw, &ext); err != nil {
			return nil, err
		}
	}
	encoding := lspext.NegotiateEncoding(ext.Capabilities.General.PositionEncodings)

	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil, &jsonrpc.ResponseError{Code: jsonrpc.CodeInvalidRequest, Message: "server already initialized"}
	}
	s.initialized = true
	s.encoding = encoding
	s.mu.Unlock()

	client, root := "", ""
	if params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}
	if params.RootURI != nil {
		root = *params.RootURI
	}
	s.logger.Info("initialize", "client", client, "root", root, "position_encoding", encoding)

	return lspext.InitializeResult{
		Capabilities: features.Capabilities(encoding, s.cfg.Server.InlayHintsEnabled()),
		ServerInfo:   &protocol.InitializeResultServerInfo{Name: Name, Version: &s.version},
	}, nil
}

func (s *Server) shutdownRequest(_ context.Context, _ json.RawMessage) (any, error) {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()
	s.logger.Info("shutdown requested", "documents", s.docs.Len())
	return nil, nil
}

// ----- document synchronization -----

func (s *Server) didOpen(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidOpenTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		return err
	}
	item := params.TextDocument
	if s.Excluded(item.URI) {
		s.logger.Debug("document excluded", "uri", item.URI)
		return nil
	}
	doc := s.analyze(ctx, item.URI, int(item.Version), item.Text)
	s.indexDocument(ctx, doc)
	return nil
}

func (s *Server) didChange(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidChangeTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	doc, open := s.docs.Get(uri)
	if !open || len(params.ContentChanges) == 0 {
		return nil
	}
	text := doc.State.Text
	for _, change := range params.ContentChanges {
		text = applyChange(text, change, s.positionEncoding())
	}
	s.analyze(ctx, uri, int(params.TextDocument.Version), text)
	return nil
}

// applyChange applies one content change. Whole-document events replace the
// text; ranged events, which clients may still send under full sync, splice
// it.
func applyChange(text string, change any, encoding string) string {
	switch c := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return c.Text
	case protocol.TextDocumentContentChangeEvent:
		if c.Range == nil {
			return c.Text
		}
		m := lspext.NewMapper(encoding, text)
		start := offsetOf(text, m.FromPosition(c.Range.Start))
		end := offsetOf(text, m.FromPosition(c.Range.End))
		if end < start {
			start, end = end, start
		}
		return text[:start] + c.Text + text[end:]
	}
	return text
}

// offsetOf converts a document position to a byte offset, clamped to text.
func offsetOf(text string, pos lang.Position) int {
	offset := 0
	for line := 0; line < pos.Line; line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}
	lineEnd := len(text)
	if next := strings.IndexByte(text[offset:], '\n'); next >= 0 {
		lineEnd = offset + next
	}
	return min(offset+max(pos.Character, 0), lineEnd)
}

func (s *Server) didSave(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidSaveTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		return err
	}
	doc, open := s.docs.Get(params.TextDocument.URI)
	if !open {
		return nil
	}
	if params.Text != nil && *params.Text != doc.State.Text {
		if rebuilt := s.analyze(ctx, doc.URI, doc.Version, *params.Text); rebuilt != nil {
			doc = rebuilt
		}
	}
	s.indexDocument(ctx, doc)
	return nil
}

func (s *Server) didClose(raw json.RawMessage) error {
	var params protocol.DidCloseTextDocumentParams
	if err := decodeParams(raw, &params); err != nil {
		return err
	}
	uri := params.TextDocument.URI
	if !s.docs.Delete(uri) {
		return nil
	}
	s.clearDiagnostics(uri)
	return nil
}

// ----- requests -----

func (s *Server) document(uri string) *Document {
	doc, ok := s.docs.Get(uri)
	if !ok {
		return nil
	}
	return doc
}

// viewFor decodes position params and returns the view at that position
// together with the document's mapper.
func (s *Server) viewFor(raw json.RawMessage) (*lang.ScopedView, lspext.Mapper, error) {
	var params protocol.TextDocumentPositionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, lspext.Mapper{}, err
	}
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, lspext.Mapper{}, nil
	}
	return lang.ViewAt(doc.State, doc.Mapper.FromPosition(params.Position)), doc.Mapper, nil
}

func (s *Server) completion(_ context.Context, raw json.RawMessage) (any, error) {
	view, _, err := s.viewFor(raw)
	if err != nil {
		return nil, err
	}
	list := protocol.CompletionList{Items: []protocol.CompletionItem{}}
	if view != nil {
		if items := features.Completion(view); items != nil {
			list.Items = items
		}
	}
	observability.CompletionItems.Observe(float64(len(list.Items)))
	return list, nil
}

func (s *Server) hover(_ context.Context, raw json.RawMessage) (any, error) {
	view, _, err := s.viewFor(raw)
	if err != nil || view == nil {
		return nil, err
	}
	if h := features.Hover(view); h != nil {
		return h, nil
	}
	return nil, nil
}

func (s *Server) definition(_ context.Context, raw json.RawMessage) (any, error) {
	view, m, err := s.viewFor(raw)
	if err != nil || view == nil {
		return nil, err
	}
	if loc := features.Definition(view, m); loc != nil {
		return loc, nil
	}
	return nil, nil
}

func (s *Server) typeDefinition(_ context.Context, raw json.RawMessage) (any, error) {
	view, m, err := s.viewFor(raw)
	if err != nil || view == nil {
		return nil, err
	}
	if loc := features.TypeDefinition(view, m); loc != nil {
		return loc, nil
	}
	return nil, nil
}

func (s *Server) signatureHelp(_ context.Context, raw json.RawMessage) (any, error) {
	view, _, err := s.viewFor(raw)
	if err != nil || view == nil {
		return nil, err
	}
	if help := features.SignatureHelp(view); help != nil {
		return help, nil
	}
	return nil, nil
}

func (s *Server) foldingRange(_ context.Context, raw json.RawMessage) (any, error) {
	var params protocol.FoldingRangeParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	ranges := []protocol.FoldingRange{}
	if doc := s.document(params.TextDocument.URI); doc != nil && doc.State.Global != nil {
		ranges = append(ranges, features.FoldingRanges(doc.State.Global)...)
	}
	return ranges, nil
}

func (s *Server) semanticTokens(_ context.Context, raw json.RawMessage) (any, error) {
	var params protocol.SemanticTokensParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	return features.EncodeSemanticTokens(features.SemanticTokens(doc.State), doc.Mapper), nil
}

func (s *Server) inlayHint(_ context.Context, raw json.RawMessage) (any, error) {
	var params lspext.InlayHintParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	hints := []lspext.InlayHint{}
	doc := s.document(params.TextDocument.URI)
	if doc == nil || !s.cfg.Server.InlayHintsEnabled() {
		return hints, nil
	}
	var within *lang.Range
	if params.Range != nil {
		r := doc.Mapper.FromRange(*params.Range)
		within = &r
	}
	return append(hints, features.InlayHints(doc.State, within, doc.Mapper)...), nil
}

func (s *Server) codeLens(_ context.Context, raw json.RawMessage) (any, error) {
	var params protocol.CodeLensParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	lenses := []protocol.CodeLens{}
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return lenses, nil
	}
	return append(lenses, features.CodeLenses(doc.State, doc.Mapper)...), nil
}

func (s *Server) documentSymbol(_ context.Context, raw json.RawMessage) (any, error) {
	var params protocol.DocumentSymbolParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return features.DocumentSymbols(doc.State, doc.Mapper), nil
}

func (s *Server) workspaceSymbol(ctx context.Context, raw json.RawMessage) (any, error) {
	var params protocol.WorkspaceSymbolParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	var matches []symbols.Match
	if s.index != nil {
		found, err := s.index.Search(ctx, params.Query, symbols.DefaultLimit)
		if err != nil {
			return nil, err
		}
		matches = found
	} else {
		matches = s.searchOpenDocuments(params.Query, symbols.DefaultLimit)
	}
	return features.WorkspaceSymbols(matches, s.mappers()), nil
}

// mappers returns a per-request lookup of column mappers. Open documents
// use their own; closed ones are read from disk when columns need
// converting, and fall back to byte columns when they cannot be read.
func (s *Server) mappers() func(uri string) lspext.Mapper {
	encoding := s.positionEncoding()
	cache := make(map[string]lspext.Mapper)
	return func(uri string) lspext.Mapper {
		if m, ok := cache[uri]; ok {
			return m
		}
		var m lspext.Mapper
		if doc := s.document(uri); doc != nil {
			m = doc.Mapper
		} else if encoding == lspext.EncodingUTF16 {
			if data, err := os.ReadFile(util.URIToPath(uri)); err == nil {
				m = lspext.NewMapper(encoding, string(data))
			}
		}
		cache[uri] = m
		return m
	}
}

// searchOpenDocuments answers workspace/symbol from memory when no index is
// configured, with the same matching rules as the index.
func (s *Server) searchOpenDocuments(query string, limit int) []symbols.Match {
	query = strings.ToLower(query)
	var out []symbols.Match
	for _, doc := range s.docs.All() {
		for _, e := range symbols.EntriesFrom(doc.State) {
			if strings.Contains(strings.ToLower(e.Name), query) {
				out = append(out, symbols.Match{URI: doc.URI, Entry: e})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].URI < out[j].URI
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
