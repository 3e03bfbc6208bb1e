// # cmd/cstyle/app.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"cstyle/internal/core/config"
	"cstyle/internal/data/symbols"
	"cstyle/internal/engine/analysis"
	"cstyle/internal/engine/lang"
	"cstyle/internal/engine/parser"
	"cstyle/internal/lsp/server"
	"cstyle/internal/shared/observability"
	"cstyle/internal/shared/util"
)

const indexQueueCapacity = 256

// App wires the configured grammar, fact table, symbol index and server.
type App struct {
	cfg     *config.Config
	session string
	builder *parser.Builder
	facts   *lang.FactTable
	index   *symbols.Store
	writer  *symbols.Writer
	server  *server.Server
}

func NewApp(cfg *config.Config, session string) (*App, error) {
	loader, err := parser.NewGrammarLoader(cfg.Language.Grammar)
	if err != nil {
		return nil, err
	}
	p, err := parser.NewParser(loader, cfg.Language.Grammar)
	if err != nil {
		return nil, err
	}
	facts, err := lang.ResolveFactTable(cfg.Language.Name, cfg.Language.FactsPath)
	if err != nil {
		return nil, fmt.Errorf("load fact table: %w", err)
	}

	app := &App{
		cfg:     cfg,
		session: session,
		builder: parser.NewBuilder(p),
		facts:   facts,
	}
	if cfg.Symbols.Enabled {
		if err := util.EnsureParentDir(cfg.Symbols.Path); err != nil {
			return nil, fmt.Errorf("create symbol index directory: %w", err)
		}
		index, err := symbols.Open(cfg.Symbols.Path)
		if err != nil {
			return nil, err
		}
		app.index = index
		app.writer = symbols.NewWriter(index, indexQueueCapacity, slog.Default())
	}

	app.server, err = server.New(server.Options{
		Config:    cfg,
		Builder:   app.builder,
		Facts:     facts,
		Index:     app.index,
		Writer:    app.writer,
		Logger:    slog.Default(),
		SessionID: session,
		Version:   VERSION,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// Run serves the protocol on in/out until the session ends, alongside the
// metrics endpoint and the fact table watcher when they are configured.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if tr := a.cfg.Observability.Tracing; tr.Enabled {
		shutdown, err := observability.SetupTracing(ctx, observability.TracingOptions{
			Endpoint:    tr.Endpoint,
			Insecure:    tr.Insecure,
			ServiceName: tr.ServiceName,
			SessionID:   a.session,
		})
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Warn("flush traces", "error", err)
				}
			}()
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// The session ending stops every other service.
		defer cancel()
		return a.server.Serve(gctx, in, out)
	})

	if addr := a.cfg.Observability.MetricsAddress; addr != "" {
		g.Go(func() error {
			return observability.ServeMetrics(gctx, addr)
		})
	}

	if a.writer != nil {
		g.Go(func() error {
			return a.writer.Run(gctx)
		})
	}

	if a.cfg.Watch.Enabled && a.cfg.Language.FactsPath != "" {
		watcher := config.NewWatcher([]string{a.cfg.Language.FactsPath}, a.cfg.Watch.Debounce, func(path string) {
			_ = a.server.ReloadFacts(gctx, path)
		})
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	slog.Info("cstyle started",
		"session", a.session,
		"grammar", a.cfg.Language.Grammar,
		"language", a.cfg.Language.Name,
		"symbol_index", a.index != nil,
	)
	return g.Wait()
}

// Dump analyzes one file and writes a styled report of its parse state.
func (a *App) Dump(ctx context.Context, w io.Writer, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	state := a.builder.Build(ctx, "file://"+filepath.ToSlash(abs), string(text), a.facts)
	analysis.Annotate(state)
	diags := analysis.Diagnose(state, analysis.DefaultOptions())
	_, err = io.WriteString(w, renderDump(state, diags))
	return err
}

func (a *App) Close() {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			slog.Warn("close symbol index", "error", err)
		}
		a.index = nil
	}
}
