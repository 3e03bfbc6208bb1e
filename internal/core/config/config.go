package config

import (
	"time"
)

// Config is the server configuration, read from a TOML file.
type Config struct {
	Version       int           `toml:"version"`
	Language      Language      `toml:"language"`
	Server        Server        `toml:"server"`
	Symbols       Symbols       `toml:"symbols"`
	Observability Observability `toml:"observability"`
	Logging       Logging       `toml:"logging"`
	Watch         Watch         `toml:"watch"`
}

type Language struct {
	Name string `toml:"name"`
	// Grammar is the tree-sitter grammar documents are parsed with.
	Grammar string `toml:"grammar"`
	// FactsPath points at a JSON, TOML or YAML fact table. Empty selects the
	// embedded table for Name.
	FactsPath  string   `toml:"facts_path"`
	Extensions []string `toml:"extensions"`
}

type Server struct {
	// Exclude holds glob patterns; matching documents are not analyzed.
	Exclude        []string  `toml:"exclude"`
	Diagnostics    *bool     `toml:"diagnostics"`
	UnusedWarnings *bool     `toml:"unused_warnings"`
	InlayHints     *bool     `toml:"inlay_hints"`
	RateLimit      RateLimit `toml:"rate_limit"`
}

type RateLimit struct {
	Enabled           bool `toml:"enabled"`
	RequestsPerMinute int  `toml:"requests_per_minute"`
	Burst             int  `toml:"burst"`
}

type Symbols struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string  `toml:"metrics_address"`
	Tracing        Tracing `toml:"tracing"`
}

type Tracing struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

type Logging struct {
	Level string `toml:"level"`
	// File receives logs instead of stderr when set. Stdout is reserved for
	// the protocol.
	File string `toml:"file"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

// DiagnosticsEnabled reports whether diagnostics are published.
func (s Server) DiagnosticsEnabled() bool { return boolOr(s.Diagnostics, true) }

// UnusedWarningsEnabled reports whether unused locals are reported.
func (s Server) UnusedWarningsEnabled() bool { return boolOr(s.UnusedWarnings, true) }

func (s Server) InlayHintsEnabled() bool { return boolOr(s.InlayHints, true) }

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// DefaultConfig is the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
