package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"cstyle/internal/core/errors"
)

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "config file not found"), errors.CtxPath, path)
		}
		return nil, err
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return cfg, nil
}

// Parse decodes TOML text into a defaulted, validated configuration.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}

	ApplyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Language.Name) == "" {
		cfg.Language.Name = "c"
	}
	if strings.TrimSpace(cfg.Language.Grammar) == "" {
		cfg.Language.Grammar = "c"
	}

	if cfg.Server.RateLimit.RequestsPerMinute <= 0 {
		cfg.Server.RateLimit.RequestsPerMinute = 600
	}
	if cfg.Server.RateLimit.Burst <= 0 {
		cfg.Server.RateLimit.Burst = 50
	}

	if strings.TrimSpace(cfg.Symbols.Path) == "" {
		cfg.Symbols.Path = ".cstyle/symbols.db"
	}

	if strings.TrimSpace(cfg.Observability.Tracing.ServiceName) == "" {
		cfg.Observability.Tracing.ServiceName = "cstyle"
	}

	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 200 * time.Millisecond
	}
}

func normalize(cfg *Config) {
	cfg.Language.Name = strings.ToLower(strings.TrimSpace(cfg.Language.Name))
	cfg.Language.Grammar = strings.ToLower(strings.TrimSpace(cfg.Language.Grammar))
	cfg.Language.FactsPath = strings.TrimSpace(cfg.Language.FactsPath)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
	cfg.Symbols.Path = strings.TrimSpace(cfg.Symbols.Path)
	cfg.Observability.MetricsAddress = strings.TrimSpace(cfg.Observability.MetricsAddress)

	exts := make([]string, 0, len(cfg.Language.Extensions))
	for _, ext := range cfg.Language.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	cfg.Language.Extensions = exts

	patterns := make([]string, 0, len(cfg.Server.Exclude))
	for _, p := range cfg.Server.Exclude {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	cfg.Server.Exclude = patterns
}
