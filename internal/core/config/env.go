package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CSTYLE_[SECTION]_[KEY] (e.g., CSTYLE_LOGGING_LEVEL).
func ApplyEnvOverrides(cfg *Config) {
	// Language
	setEnvString(&cfg.Language.Name, "CSTYLE_LANGUAGE_NAME")
	setEnvString(&cfg.Language.Grammar, "CSTYLE_LANGUAGE_GRAMMAR")
	setEnvString(&cfg.Language.FactsPath, "CSTYLE_LANGUAGE_FACTS_PATH")

	// Server
	setEnvBool(&cfg.Server.RateLimit.Enabled, "CSTYLE_SERVER_RATE_LIMIT_ENABLED")
	setEnvInt(&cfg.Server.RateLimit.RequestsPerMinute, "CSTYLE_SERVER_RATE_LIMIT_REQUESTS_PER_MINUTE")
	setEnvInt(&cfg.Server.RateLimit.Burst, "CSTYLE_SERVER_RATE_LIMIT_BURST")

	// Symbols
	setEnvBool(&cfg.Symbols.Enabled, "CSTYLE_SYMBOLS_ENABLED")
	setEnvString(&cfg.Symbols.Path, "CSTYLE_SYMBOLS_PATH")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "CSTYLE_OBSERVABILITY_METRICS_ADDRESS")
	setEnvBool(&cfg.Observability.Tracing.Enabled, "CSTYLE_OBSERVABILITY_TRACING_ENABLED")
	setEnvString(&cfg.Observability.Tracing.Endpoint, "CSTYLE_OBSERVABILITY_TRACING_ENDPOINT")

	// Logging
	setEnvString(&cfg.Logging.Level, "CSTYLE_LOGGING_LEVEL")
	setEnvString(&cfg.Logging.File, "CSTYLE_LOGGING_FILE")

	// Watch
	setEnvBool(&cfg.Watch.Enabled, "CSTYLE_WATCH_ENABLED")
	setEnvDuration(&cfg.Watch.Debounce, "CSTYLE_WATCH_DEBOUNCE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
