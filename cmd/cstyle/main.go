// # cmd/cstyle/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"cstyle/internal/core/config"
	"cstyle/internal/lsp/server"
)

var (
	configPath = flag.String("config", "", "Path to config file (default ./cstyle.toml when present)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
	dump       = flag.String("dump", "", "Analyze one file, print its symbols and scopes, and exit")
)

const VERSION = "0.3.0"

const defaultConfigFile = "cstyle.toml"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("cstyle v%s\n", VERSION)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closeLog := setupLogging(cfg, *verbose)
	defer closeLog()

	session := uuid.NewString()
	app, err := NewApp(cfg, session)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *dump != "" {
		if err := app.Dump(context.Background(), os.Stdout, *dump); err != nil {
			slog.Error("dump failed", "path", *dump, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, server.ErrExitWithoutShutdown) {
			slog.Warn("client exited without shutdown")
		} else {
			slog.Error("server stopped", "error", err)
		}
		app.Close()
		closeLog()
		os.Exit(1)
	}
}

// loadConfig reads path, or ./cstyle.toml when path is empty and the file
// exists. Without either it returns the defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return config.Load(defaultConfigFile)
	}
	return config.DefaultConfig(), nil
}

// setupLogging installs the default slog logger. Stdout carries the
// protocol, so logs go to stderr or to logging.file.
func setupLogging(cfg *config.Config, verbose bool) func() {
	level, _ := config.ParseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}

	var output io.Writer = os.Stderr
	closer := func() {}
	if logPath := cfg.Logging.File; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
			fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		} else if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
			output = f
			closer = func() { _ = f.Close() }
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return closer
}
