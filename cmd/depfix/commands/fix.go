package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depfix/depfix/pkg/fixer"
)

// FixCommand holds the flags for the fix command.
type FixCommand struct {
	cfgFile *string
	dir     string
	write   bool
}

// NewFixCommand creates and configures the fix command.
func NewFixCommand(cfgFile *string) *cobra.Command {
	cmd := &FixCommand{cfgFile: cfgFile}

	cobraCmd := &cobra.Command{
		Use:   "fix [files...]",
		Short: "Fix missing require/import statements in JavaScript/TypeScript files",
		Long: `Fix resolves every unimported free identifier in the given files against
the project's own source files, its declared dependencies, and Node's builtin
modules, and rewrites each file's import block to match.

Examples:
  depfix fix src/index.js              # print the fixed file to stdout
  depfix fix -w src/*.js                # rewrite files in place
  depfix fix --dir /path/to/project a.js b.js`,
		Args: cobra.MinimumNArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.dir, "dir", "", "project directory (default: each file's own directory)")
	cobraCmd.Flags().BoolVarP(&cmd.write, "write", "w", false, "rewrite files in place instead of printing to stdout")

	return cobraCmd
}

// Run executes the fix command over every file argument.
func (c *FixCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(*c.cfgFile)
	if err != nil {
		return err
	}

	f, err := newFixer(cfg, nil)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	for _, file := range args {
		fixErr := c.fixOne(cmd.Context(), f, file, cmd.OutOrStdout())
		if fixErr != nil {
			return fixErr
		}
	}

	return nil
}

func (c *FixCommand) fixOne(ctx context.Context, f *fixer.Fixer, file string, stdout io.Writer) error {
	code, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("fix: read %s: %w", file, err)
	}

	dir := c.dir
	if dir == "" {
		dir = filepath.Dir(file)
	}

	fixed, err := f.Run(ctx, dir, file, string(code), nil)
	if err != nil {
		return fmt.Errorf("fix: %s: %w", file, err)
	}

	if !c.write {
		_, writeErr := fmt.Fprint(stdout, fixed)
		if writeErr != nil {
			return fmt.Errorf("fix: write output: %w", writeErr)
		}

		return nil
	}

	if fixed == string(code) {
		return nil
	}

	info, statErr := os.Stat(file)
	mode := os.FileMode(0o644)

	if statErr == nil {
		mode = info.Mode()
	}

	writeErr := os.WriteFile(file, []byte(fixed), mode)
	if writeErr != nil {
		return fmt.Errorf("fix: write %s: %w", file, writeErr)
	}

	return nil
}
