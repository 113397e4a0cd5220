package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depfix/depfix/internal/observability"
	"github.com/depfix/depfix/pkg/lsp"
)

// NewLSPCommand creates the lsp command, which starts a Language Server
// Protocol server on stdio exposing a "Fix Imports" code action.
func NewLSPCommand(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lsp",
		Short:         "Start a Language Server Protocol server",
		Long:          `Start a language server (stdio mode) exposing a "Fix Imports" code action.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgFile)
			if err != nil {
				return err
			}

			providers, err := initObservability(cfg, observability.ModeLSP, false)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			f, err := newFixer(cfg, nil)
			if err != nil {
				return fmt.Errorf("lsp: %w", err)
			}

			diag, err := startDiagnostics(cfg, providers.Meter, f, providers.Logger)
			if err != nil {
				return fmt.Errorf("lsp: %w", err)
			}

			if diag != nil {
				defer diag.Close()
			}

			lsp.NewServer(f).Run()

			return nil
		},
	}

	return cmd
}
