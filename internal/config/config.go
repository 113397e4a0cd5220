package config

import (
	"errors"
	"log/slog"
	"time"
)

// Config is the top-level configuration struct for depfix.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Registry      RegistryConfig      `mapstructure:"registry"`
	Style         StyleConfig         `mapstructure:"style"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// RegistryConfig configures the dependency registry (C7).
type RegistryConfig struct {
	CacheDir         string        `mapstructure:"cache_dir"`
	SandboxTimeout   time.Duration `mapstructure:"sandbox_timeout"`
	NodeBinary       string        `mapstructure:"node_binary"`
	BuiltinsOverride string        `mapstructure:"builtins_override"`
	MemCacheSize     int           `mapstructure:"mem_cache_size"`
}

// StyleConfig configures the fallback style used when a file has no
// detectable precedent (C1).
type StyleConfig struct {
	RequireKeyword string `mapstructure:"require_keyword"`
	Kind           string `mapstructure:"kind"`
	Quote          string `mapstructure:"quote"`
	Semi           string `mapstructure:"semi"`
	Tab            string `mapstructure:"tab"`
	TrailingComma  string `mapstructure:"trailing_comma"`
}

// ObservabilityConfig configures logging and metrics/tracing export.
type ObservabilityConfig struct {
	LogJSON      bool   `mapstructure:"log_json"`
	LogLevel     string `mapstructure:"log_level"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	DebugTrace   bool   `mapstructure:"debug_trace"`
	// DiagnosticsAddr, if set, starts a side-channel HTTP server exposing
	// /healthz, /readyz, and /metrics. Stdio-transport commands (mcp, lsp)
	// have no other HTTP surface, so this is how an operator monitors them.
	DiagnosticsAddr string `mapstructure:"diagnostics_addr"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSandboxTimeout indicates the sandbox timeout is not positive.
	ErrInvalidSandboxTimeout = errors.New("registry.sandbox_timeout must be positive")
	// ErrInvalidRequireKeyword indicates an unrecognized fallback require keyword.
	ErrInvalidRequireKeyword = errors.New(`style.require_keyword must be "require" or "import"`)
	// ErrInvalidLogLevel indicates an unrecognized log level string.
	ErrInvalidLogLevel = errors.New("observability.log_level must be one of debug, info, warn, error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Registry.SandboxTimeout <= 0 {
		return ErrInvalidSandboxTimeout
	}

	if c.Style.RequireKeyword != "require" && c.Style.RequireKeyword != "import" {
		return ErrInvalidRequireKeyword
	}

	if _, err := parseLogLevel(c.Observability.LogLevel); err != nil {
		return err
	}

	return nil
}

// parseLogLevel maps a config string to a slog.Level.
func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}

// LogLevel returns the parsed slog.Level for the configured log level,
// defaulting to Info for an unset or invalid value.
func (c *Config) LogLevel() slog.Level {
	lvl, err := parseLogLevel(c.Observability.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}

	return lvl
}
