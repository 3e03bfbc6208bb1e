// # cmd/cstyle/app_test.go
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cstyle/internal/core/config"
	"cstyle/internal/lsp/transport"
)

const dumpSource = `#define LIMIT 8

struct Point {
    int x;
    int y;
};

int total;

int sum(int a, int b) {
    int unused_tmp;
    return a + b;
}

int main(void) {
    return sum(1, LIMIT);
}
`

func TestDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.c")
	if err := os.WriteFile(path, []byte(dumpSource), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(config.DefaultConfig(), "test-session")
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	var out bytes.Buffer
	if err := app.Dump(context.Background(), &out, path); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Types", "Point", "int  x",
		"Functions", "int sum(int a, int b)", "1 references",
		"Defines", "LIMIT", "= 8",
		"Scopes", "global", "int  total", "lines 10-13", "int  unused_tmp", "(unused)",
		"Diagnostics (1)", `"unused_tmp" is declared but never used`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("dump output missing %q:\n%s", want, got)
		}
	}
}

func TestDumpMissingFile(t *testing.T) {
	app, err := NewApp(config.DefaultConfig(), "test-session")
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.Dump(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.c")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewAppWithSymbolIndex(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Symbols.Enabled = true
	cfg.Symbols.Path = filepath.Join(t.TempDir(), "state", "symbols.db")

	app, err := NewApp(cfg, "test-session")
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	if app.index == nil {
		t.Fatal("expected symbol index to be opened")
	}
	if _, err := os.Stat(cfg.Symbols.Path); err != nil {
		t.Fatalf("expected index file: %v", err)
	}
}

func TestNewAppRejectsUnknownLanguageWithoutFacts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Language.Name = "glsl"
	if _, err := NewApp(cfg, "test-session"); err == nil {
		t.Fatal("expected error without a fact table for glsl")
	}
}

func TestRunEndsWithSession(t *testing.T) {
	app, err := NewApp(config.DefaultConfig(), "test-session")
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	var in bytes.Buffer
	for _, msg := range []map[string]any{
		{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": map[string]any{}},
		{"jsonrpc": "2.0", "id": 2, "method": "shutdown"},
		{"jsonrpc": "2.0", "method": "exit"},
	} {
		if err := transport.WriteMessage(&in, msg); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	if err := app.Run(context.Background(), &in, &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), `"serverInfo":{"name":"cstyle"`) {
		t.Errorf("expected initialize result in output, got %s", out.String())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language.Grammar != "c" {
		t.Errorf("expected default grammar c, got %q", cfg.Language.Grammar)
	}

	if err := os.WriteFile(defaultConfigFile, []byte("[language]\ngrammar = \"cpp\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language.Grammar != "cpp" {
		t.Errorf("expected grammar from %s, got %q", defaultConfigFile, cfg.Language.Grammar)
	}
}
