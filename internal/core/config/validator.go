package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"

	"cstyle/internal/core/errors"
	"cstyle/internal/shared/util"
)

var supportedGrammars = []string{"c", "cpp"}

func validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validateLanguage,
		validateServer,
		validateSymbols,
		validateLogging,
		validateWatch,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.CodeValidationError, fmt.Sprintf(format, args...))
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return invalid("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateLanguage(cfg *Config) error {
	known := false
	for _, g := range supportedGrammars {
		if cfg.Language.Grammar == g {
			known = true
		}
	}
	if !known {
		return invalid("language.grammar must be one of: %s, got %q", strings.Join(supportedGrammars, ", "), cfg.Language.Grammar)
	}
	if cfg.Language.Name != "c" && cfg.Language.FactsPath == "" {
		return invalid("language.facts_path is required for language %q", cfg.Language.Name)
	}
	return nil
}

func validateServer(cfg *Config) error {
	for i, pattern := range cfg.Server.Exclude {
		if _, err := CompileExclude(pattern); err != nil {
			return invalid("server.exclude[%d] is not a valid glob %q: %v", i, pattern, err)
		}
	}
	rl := cfg.Server.RateLimit
	if rl.Enabled && rl.Burst > rl.RequestsPerMinute {
		return invalid("server.rate_limit.burst (%d) must not exceed requests_per_minute (%d)", rl.Burst, rl.RequestsPerMinute)
	}
	return nil
}

func validateSymbols(cfg *Config) error {
	if cfg.Symbols.Enabled && cfg.Symbols.Path == "" {
		return invalid("symbols.path must not be empty when symbols.enabled=true")
	}
	return nil
}

func validateLogging(cfg *Config) error {
	if _, ok := ParseLevel(cfg.Logging.Level); !ok {
		return invalid("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return invalid("watch.debounce must not be negative")
	}
	return nil
}

// CompileExclude compiles an exclude pattern. Patterns containing a path
// separator match the whole path with '/' as the separator; others match the
// base name too.
func CompileExclude(pattern string) (glob.Glob, error) {
	pattern = util.NormalizePatternPath(pattern)
	if util.ContainsPathSeparator(pattern) {
		return glob.Compile(pattern, '/')
	}
	return glob.Compile(pattern)
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
