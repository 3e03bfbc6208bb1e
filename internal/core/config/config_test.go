// # internal/core/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cstyle/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cstyle.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[language]
name = "glsl"
grammar = "CPP"
facts_path = "./facts/glsl.yaml"
extensions = ["vert", ".FRAG", " "]

[server]
exclude = ["**/vendor/**", "*.gen.c"]
diagnostics = true
unused_warnings = false
inlay_hints = false

[server.rate_limit]
enabled = true
requests_per_minute = 120
burst = 10

[symbols]
enabled = true
path = "/tmp/idx/symbols.db"

[observability]
metrics_address = "127.0.0.1:9464"

[observability.tracing]
enabled = true
endpoint = "localhost:4317"
insecure = true

[logging]
level = "DEBUG"
file = "/tmp/cstyle.log"

[watch]
enabled = true
debounce = "1s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Language.Name != "glsl" || cfg.Language.Grammar != "cpp" {
		t.Errorf("unexpected language %+v", cfg.Language)
	}
	if got := cfg.Language.Extensions; len(got) != 2 || got[0] != ".vert" || got[1] != ".frag" {
		t.Errorf("unexpected extensions %v", got)
	}
	if len(cfg.Server.Exclude) != 2 {
		t.Errorf("unexpected exclude %v", cfg.Server.Exclude)
	}
	if !cfg.Server.DiagnosticsEnabled() || cfg.Server.UnusedWarningsEnabled() || cfg.Server.InlayHintsEnabled() {
		t.Errorf("unexpected server toggles %+v", cfg.Server)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RequestsPerMinute != 120 || cfg.Server.RateLimit.Burst != 10 {
		t.Errorf("unexpected rate limit %+v", cfg.Server.RateLimit)
	}
	if !cfg.Symbols.Enabled || cfg.Symbols.Path != "/tmp/idx/symbols.db" {
		t.Errorf("unexpected symbols %+v", cfg.Symbols)
	}
	if cfg.Observability.MetricsAddress != "127.0.0.1:9464" {
		t.Errorf("unexpected metrics address %q", cfg.Observability.MetricsAddress)
	}
	if tr := cfg.Observability.Tracing; !tr.Enabled || tr.Endpoint != "localhost:4317" || !tr.Insecure || tr.ServiceName != "cstyle" {
		t.Errorf("unexpected tracing %+v", tr)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "/tmp/cstyle.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != time.Second {
		t.Errorf("unexpected watch %+v", cfg.Watch)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Language.Name != "c" || cfg.Language.Grammar != "c" || cfg.Language.FactsPath != "" {
		t.Errorf("unexpected language defaults %+v", cfg.Language)
	}
	if !cfg.Server.DiagnosticsEnabled() || !cfg.Server.UnusedWarningsEnabled() || !cfg.Server.InlayHintsEnabled() {
		t.Error("expected server features enabled by default")
	}
	if cfg.Server.RateLimit.Enabled {
		t.Error("expected rate limiting off by default")
	}
	if cfg.Server.RateLimit.RequestsPerMinute != 600 || cfg.Server.RateLimit.Burst != 50 {
		t.Errorf("unexpected rate limit defaults %+v", cfg.Server.RateLimit)
	}
	if cfg.Symbols.Enabled || cfg.Symbols.Path != ".cstyle/symbols.db" {
		t.Errorf("unexpected symbols defaults %+v", cfg.Symbols)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
	if cfg.Watch.Debounce != 200*time.Millisecond {
		t.Errorf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[language\nname ="))
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CSTYLE_LOGGING_LEVEL", "warn")
	t.Setenv("CSTYLE_SERVER_RATE_LIMIT_ENABLED", "true")
	t.Setenv("CSTYLE_WATCH_DEBOUNCE", "2s")
	t.Setenv("CSTYLE_SERVER_RATE_LIMIT_BURST", "not-a-number")

	cfg, err := Parse(`
[logging]
level = "error"
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env level warn, got %q", cfg.Logging.Level)
	}
	if !cfg.Server.RateLimit.Enabled {
		t.Error("expected rate limit enabled from env")
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Server.RateLimit.Burst != 50 {
		t.Errorf("unparsable override must be ignored, got burst %d", cfg.Server.RateLimit.Burst)
	}
}
