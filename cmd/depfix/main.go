// Package main provides the entry point for the depfix CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/depfix/depfix/cmd/depfix/commands"
	"github.com/depfix/depfix/pkg/version"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "depfix",
		Short: "depfix - automatic import/require fixer for JavaScript and TypeScript",
		Long: `depfix resolves unimported identifiers in JavaScript/TypeScript source
files against a project's own files, its declared dependencies, and Node's
builtin modules, and rewrites the file's import block to match.

Commands:
  fix       Fix imports in one or more files
  serve     Start an HTTP server exposing the fixer over /api/fix
  mcp       Start an MCP server for AI agent integration
  lsp       Start a Language Server Protocol server
  registry  Inspect a project's derived dependency registry`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .depfix.yaml in cwd or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (accepted; has no effect)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output (accepted; has no effect)")

	rootCmd.AddCommand(commands.NewFixCommand(&cfgFile))
	rootCmd.AddCommand(commands.NewServeCommand(&cfgFile))
	rootCmd.AddCommand(commands.NewMCPCommand(&cfgFile))
	rootCmd.AddCommand(commands.NewLSPCommand(&cfgFile))
	rootCmd.AddCommand(commands.NewRegistryCommand(&cfgFile))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, version.String())
		},
	}
}
