// Package server runs a language server session over a JSON-RPC stream:
// lifecycle, document synchronization and request dispatch.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cstyle/internal/core/config"
	domainerr "cstyle/internal/core/errors"
	"cstyle/internal/data/symbols"
	"cstyle/internal/engine/analysis"
	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/parser"
	"cstyle/internal/features"
	"cstyle/internal/lsp/jsonrpc"
	"cstyle/internal/lsp/lspext"
	"cstyle/internal/lsp/transport"
	"cstyle/internal/shared/observability"
	"cstyle/internal/shared/util"
)

// ErrExitWithoutShutdown is returned by Serve when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Name is reported to clients in the initialize result.
const Name = "cstyle"

type Options struct {
	Config  *config.Config
	Builder *parser.Builder
	Facts   *lang.FactTable
	// Index is optional; without it workspace/symbol searches open
	// documents only.
	Index *symbols.Store
	// Writer, when set, takes index updates off the request path.
	Writer    *symbols.Writer
	Logger    *slog.Logger
	SessionID string
	Version   string
}

type Server struct {
	cfg      *config.Config
	builder  *parser.Builder
	index    *symbols.Store
	writer   *symbols.Writer
	logger   *slog.Logger
	session  string
	version  string
	docs     *DocumentStore
	registry *Registry
	gate     *transport.Gate
	excludes []glob.Glob

	factsMu sync.RWMutex
	facts   *lang.FactTable

	// buildMu orders document builds against fact table swaps.
	buildMu sync.Mutex

	mu          sync.Mutex
	conn        *transport.Conn
	encoding    string
	initialized bool
	shutdown    bool

	inflight sync.WaitGroup
}

func New(opts Options) (*Server, error) {
	if opts.Builder == nil {
		return nil, domainerr.New(domainerr.CodeValidationError, "parser builder is required")
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Facts == nil {
		opts.Facts = lang.EmptyFactTable()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	excludes := make([]glob.Glob, 0, len(opts.Config.Server.Exclude))
	for _, pattern := range opts.Config.Server.Exclude {
		g, err := config.CompileExclude(pattern)
		if err != nil {
			return nil, domainerr.Wrap(err, domainerr.CodeValidationError, fmt.Sprintf("invalid exclude pattern %q", pattern))
		}
		excludes = append(excludes, g)
	}

	s := &Server{
		cfg:      opts.Config,
		builder:  opts.Builder,
		index:    opts.Index,
		writer:   opts.Writer,
		logger:   opts.Logger.With("session", opts.SessionID),
		session:  opts.SessionID,
		version:  opts.Version,
		docs:     NewDocumentStore(),
		registry: NewRegistry(),
		excludes: excludes,
		facts:    opts.Facts,
		encoding: lspext.EncodingUTF16,
	}
	if rl := opts.Config.Server.RateLimit; rl.Enabled {
		s.gate = transport.NewGate(rl.RequestsPerMinute, rl.Burst)
	}
	if err := s.registerHandlers(); err != nil {
		return nil, err
	}
	return s, nil
}

// Documents exposes the open documents.
func (s *Server) Documents() *DocumentStore { return s.docs }

type incoming struct {
	req *jsonrpc.Request
	err error
}

func (s *Server) client() *transport.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *Server) positionEncoding() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoding
}

// Serve reads messages from r and writes responses to w until the client
// sends exit, the stream ends or ctx is cancelled. Requests run
// concurrently; notifications are applied in arrival order.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	conn := transport.NewConn(r, w)
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.inflight.Wait()

	messages := make(chan incoming)
	go func() {
		defer close(messages)
		for {
			req, err := conn.Read()
			select {
			case messages <- incoming{req: req, err: err}:
			case <-ctx.Done():
				return
			}
			var decodeErr *transport.DecodeError
			if err != nil && !errors.As(err, &decodeErr) {
				return
			}
		}
	}()

	s.logger.Info("language server session started", "version", s.version)
	for {
		var msg incoming
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok = <-messages:
			if !ok {
				return nil
			}
		}

		if msg.err != nil {
			var decodeErr *transport.DecodeError
			if !errors.As(msg.err, &decodeErr) {
				if errors.Is(msg.err, io.EOF) {
					s.logger.Info("client closed the stream")
					return nil
				}
				return msg.err
			}
			s.logger.Warn("dropping malformed message", "error", msg.err)
			id, code := jsonrpc.Null, jsonrpc.CodeParseError
			if msg.req != nil {
				id, code = msg.req.ID, jsonrpc.CodeInvalidRequest
			}
			if msg.req == nil || !msg.req.IsNotification() {
				_ = conn.ReplyError(id, code, decodeErr.Error())
			}
			continue
		}

		if msg.req.Method == protocol.MethodExit {
			s.mu.Lock()
			clean := s.shutdown
			s.mu.Unlock()
			s.logger.Info("exit received", "clean", clean)
			if !clean {
				return ErrExitWithoutShutdown
			}
			return nil
		}
		s.handle(ctx, msg.req)
	}
}

func (s *Server) handle(ctx context.Context, req *jsonrpc.Request) {
	if req.IsNotification() {
		s.handleNotification(ctx, req)
		return
	}

	s.mu.Lock()
	initialized, shutdown := s.initialized, s.shutdown
	s.mu.Unlock()

	switch {
	case !initialized && req.Method != protocol.MethodInitialize:
		s.replyError(req, jsonrpc.CodeServerNotInitialized, "server not initialized")
		return
	case shutdown:
		s.replyError(req, jsonrpc.CodeInvalidRequest, "server is shutting down")
		return
	case !s.gate.Admit(req.Method, false):
		s.logger.Debug("request rate limited", "method", req.Method)
		s.replyError(req, jsonrpc.CodeRequestFailed, "rate limit exceeded")
		return
	}

	handler, ok := s.registry.HandlerFor(req.Method)
	if !ok {
		s.replyError(req, jsonrpc.CodeMethodNotFound, "method not found: "+req.Method)
		return
	}

	// Lifecycle requests change session state, so they are answered before
	// the next message is read.
	if req.Method == protocol.MethodInitialize || req.Method == protocol.MethodShutdown {
		s.serveRequest(ctx, req, handler)
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.serveRequest(ctx, req, handler)
	}()
}

func (s *Server) serveRequest(ctx context.Context, req *jsonrpc.Request, handler Handler) {
	ctx, span := observability.Tracer.Start(ctx, "lsp."+req.Method, trace.WithAttributes(
		attribute.String("rpc.method", req.Method),
		attribute.String("session.id", s.session),
	))
	defer span.End()
	start := time.Now()

	result, err := handler(ctx, req.Params)
	observability.RequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rpcErr := toResponseError(err)
		s.logger.Warn("request failed", "method", req.Method, "error", err)
		s.replyError(req, rpcErr.Code, rpcErr.Message)
		return
	}
	observability.RequestsTotal.WithLabelValues(req.Method, "ok").Inc()
	if err := s.client().Reply(req.ID, result); err != nil {
		s.logger.Error("write response", "method", req.Method, "error", err)
	}
}

func (s *Server) replyError(req *jsonrpc.Request, code int, message string) {
	observability.RequestsTotal.WithLabelValues(req.Method, outcomeFor(code)).Inc()
	if err := s.client().ReplyError(req.ID, code, message); err != nil {
		s.logger.Error("write error response", "method", req.Method, "error", err)
	}
}

func outcomeFor(code int) string {
	switch code {
	case jsonrpc.CodeRequestFailed:
		return "rate_limited"
	case jsonrpc.CodeServerNotInitialized:
		return "not_initialized"
	case jsonrpc.CodeMethodNotFound:
		return "not_found"
	}
	return "error"
}

func toResponseError(err error) *jsonrpc.ResponseError {
	var rpcErr *jsonrpc.ResponseError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	switch domainerr.CodeOf(err) {
	case domainerr.CodeValidationError, domainerr.CodeInvalidRequest:
		return &jsonrpc.ResponseError{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	case domainerr.CodeNotSupported:
		return &jsonrpc.ResponseError{Code: jsonrpc.CodeMethodNotFound, Message: err.Error()}
	}
	return &jsonrpc.ResponseError{Code: jsonrpc.CodeInternalError, Message: err.Error()}
}

func (s *Server) handleNotification(ctx context.Context, req *jsonrpc.Request) {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()
	if !initialized {
		s.logger.Debug("dropping notification before initialize", "method", req.Method)
		return
	}

	var err error
	switch req.Method {
	case protocol.MethodInitialized:
	case protocol.MethodTextDocumentDidOpen:
		err = s.didOpen(ctx, req.Params)
	case protocol.MethodTextDocumentDidChange:
		err = s.didChange(ctx, req.Params)
	case protocol.MethodTextDocumentDidSave:
		err = s.didSave(ctx, req.Params)
	case protocol.MethodTextDocumentDidClose:
		err = s.didClose(req.Params)
	default:
		if !strings.HasPrefix(req.Method, "$/") {
			s.logger.Debug("ignoring notification", "method", req.Method)
		}
		observability.RequestsTotal.WithLabelValues(req.Method, "ignored").Inc()
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Warn("notification failed", "method", req.Method, "error", err)
	}
	observability.RequestsTotal.WithLabelValues(req.Method, outcome).Inc()
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return &jsonrpc.ResponseError{Code: jsonrpc.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &jsonrpc.ResponseError{Code: jsonrpc.CodeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

// Excluded reports whether uri is filtered out by the exclude globs or the
// configured extensions.
func (s *Server) Excluded(uri string) bool {
	p := filepath.ToSlash(util.URIToPath(uri))
	if exts := s.cfg.Language.Extensions; len(exts) > 0 {
		ext := strings.ToLower(path.Ext(p))
		allowed := false
		for _, e := range exts {
			if e == ext {
				allowed = true
				break
			}
		}
		if !allowed {
			return true
		}
	}
	base := path.Base(p)
	rel := strings.TrimPrefix(p, "/")
	for _, g := range s.excludes {
		if g.Match(p) || g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func (s *Server) currentFacts() *lang.FactTable {
	s.factsMu.RLock()
	defer s.factsMu.RUnlock()
	return s.facts
}

// analyze builds, annotates and stores one document version, then publishes
// its diagnostics.
func (s *Server) analyze(ctx context.Context, uri string, version int, text string) *Document {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	doc := s.build(ctx, uri, version, text)
	if !s.docs.Put(doc) {
		return nil
	}
	s.publishDiagnostics(doc)
	return doc
}

func (s *Server) build(ctx context.Context, uri string, version int, text string) *Document {
	state := s.builder.Build(ctx, uri, text, s.currentFacts())
	analysis.Annotate(state)

	var diags []analysis.Diagnostic
	if s.cfg.Server.DiagnosticsEnabled() {
		diags = analysis.Diagnose(state, analysis.Options{
			Syntax: true,
			Unused: s.cfg.Server.UnusedWarningsEnabled(),
		})
	}
	return &Document{
		URI:         uri,
		Version:     version,
		State:       state,
		Diagnostics: diags,
		Mapper:      lspext.NewMapper(s.positionEncoding(), text),
	}
}

func (s *Server) publishDiagnostics(doc *Document) {
	version := protocol.UInteger(max(doc.Version, 0))
	s.sendDiagnostics(protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: features.Diagnostics(doc.Diagnostics, doc.Mapper),
	})
}

// clearDiagnostics empties what the client shows for a closed document.
func (s *Server) clearDiagnostics(uri string) {
	s.sendDiagnostics(protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: []protocol.Diagnostic{}})
}

func (s *Server) sendDiagnostics(params protocol.PublishDiagnosticsParams) {
	conn := s.client()
	if !s.cfg.Server.DiagnosticsEnabled() || conn == nil {
		return
	}
	if err := conn.Notify(protocol.ServerTextDocumentPublishDiagnostics, params); err != nil {
		s.logger.Error("publish diagnostics", "uri", params.URI, "error", err)
	}
}

func (s *Server) indexDocument(ctx context.Context, doc *Document) {
	if s.index == nil || doc == nil {
		return
	}
	if s.writer != nil {
		if !s.writer.Enqueue(doc.URI, symbols.EntriesFrom(doc.State)) {
			s.logger.Warn("symbol index queue full, update dropped", "uri", doc.URI)
		}
		return
	}
	written, err := s.index.Index(ctx, doc.State)
	if err != nil {
		s.logger.Warn("symbol index update failed", "uri", doc.URI, "error", err)
		return
	}
	if written {
		s.logger.Debug("symbol index updated", "uri", doc.URI)
	}
}

// SetFacts swaps the fact table and rebuilds every open document against it.
func (s *Server) SetFacts(ctx context.Context, facts *lang.FactTable) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	s.factsMu.Lock()
	s.facts = facts
	s.factsMu.Unlock()

	rebuilt := s.rebuild(ctx, s.docs.All())
	s.logger.Info("fact table replaced", "documents", rebuilt)
}

// rebuild re-analyzes a snapshot of documents. A document closed or edited
// since the snapshot is skipped. Callers hold buildMu.
func (s *Server) rebuild(ctx context.Context, snapshot []*Document) int {
	n := 0
	for _, prev := range snapshot {
		next := s.build(ctx, prev.URI, prev.Version, prev.State.Text)
		if !s.docs.Replace(prev, next) {
			continue
		}
		s.publishDiagnostics(next)
		n++
	}
	return n
}

// ReloadFacts loads the fact table at path and applies it. On failure the
// current table stays in place.
func (s *Server) ReloadFacts(ctx context.Context, path string) error {
	facts, err := lang.LoadFactTable(path)
	if err != nil {
		observability.FactReloadsTotal.WithLabelValues("error").Inc()
		s.logger.Error("fact table reload failed", "path", path, "error", err)
		return err
	}
	observability.FactReloadsTotal.WithLabelValues("ok").Inc()
	s.SetFacts(ctx, facts)
	return nil
}
