// Package commands implements the depfix CLI's subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/metric"

	"github.com/depfix/depfix/internal/config"
	"github.com/depfix/depfix/internal/observability"
	"github.com/depfix/depfix/pkg/fixer"
	"github.com/depfix/depfix/pkg/version"
)

// loadConfig loads depfix's config file (if any) plus env/defaults.
func loadConfig(cfgFile string) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// newFixer builds a Fixer from cfg's registry and style settings, wired to
// metrics when non-nil.
func newFixer(cfg *config.Config, metrics *observability.RegistryMetrics) (*fixer.Fixer, error) {
	return fixer.NewWithStyle(cfg.Registry, fixer.StyleFromConfig(cfg.Style), metrics)
}

// startDiagnostics starts the /healthz, /readyz, /metrics side-channel
// server when cfg.Observability.DiagnosticsAddr is set; it's the only
// HTTP surface a stdio-transport command (mcp, lsp) otherwise has.
// Returns nil, nil when diagnostics were not requested.
func startDiagnostics(cfg *config.Config, meter metric.Meter, f *fixer.Fixer, logger *slog.Logger) (*observability.DiagnosticsServer, error) {
	addr := cfg.Observability.DiagnosticsAddr
	if addr == "" {
		return nil, nil
	}

	diag, err := observability.NewDiagnosticsServer(addr, meter, observability.ReadyCheck(f.Ready))
	if err != nil {
		return nil, fmt.Errorf("start diagnostics server: %w", err)
	}

	logger.Info("diagnostics server listening", "addr", diag.Addr())

	return diag, nil
}

// initObservability initializes OTel + slog for the given application mode,
// honoring the standard OTEL_EXPORTER_OTLP_* environment variables.
func initObservability(cfg *config.Config, mode observability.AppMode, debug bool) (observability.Providers, error) {
	oCfg := observability.DefaultConfig()
	oCfg.ServiceVersion = version.Version
	oCfg.Mode = mode
	oCfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	oCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	oCfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	oCfg.LogJSON = cfg.Observability.LogJSON
	oCfg.LogLevel = cfg.LogLevel()
	oCfg.DebugTrace = cfg.Observability.DebugTrace || debug

	if oCfg.OTLPEndpoint == "" {
		oCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	}

	if debug {
		oCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.Init(oCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}
