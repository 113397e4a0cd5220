package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depfix/depfix/internal/mcp"
	"github.com/depfix/depfix/internal/observability"
)

// NewMCPCommand creates the mcp command, which starts an MCP stdio server
// exposing the fixer as the depfix_fix_imports tool.
func NewMCPCommand(cfgFile *string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes one tool:
  - depfix_fix_imports: resolve unimported identifiers and rewrite a file's
    import block to match`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runMCP(cobraCmd.Context(), *cfgFile, debug)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging to stderr")

	return cmd
}

func runMCP(ctx context.Context, cfgFile string, debug bool) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	providers, err := initObservability(cfg, observability.ModeMCP, debug)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("mcp: %w", err)
	}

	f, err := newFixer(cfg, nil)
	if err != nil {
		return fmt.Errorf("mcp: %w", err)
	}

	diag, err := startDiagnostics(cfg, providers.Meter, f, providers.Logger)
	if err != nil {
		return fmt.Errorf("mcp: %w", err)
	}

	if diag != nil {
		defer diag.Close()
	}

	deps := mcp.ServerDeps{Logger: providers.Logger, Metrics: red, Tracer: providers.Tracer}

	srv := mcp.NewServer(f, deps)

	return srv.Run(ctx)
}
