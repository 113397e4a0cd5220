package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/depfix/depfix/pkg/registry"
)

const defaultRegistryInspectTimeout = 5 * time.Second

// NewRegistryCommand creates the registry command, which inspects a
// project's derived dependency registry without fixing any file.
func NewRegistryCommand(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "registry",
		Short:         "Inspect a project's derived dependency registry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRegistryInspectCommand(cfgFile))

	return cmd
}

func newRegistryInspectCommand(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [dir]",
		Short: "Print every identifier the registry resolves for a project",
		Long: `Inspect builds the dependency registry for the given project directory
(default: current directory) and prints the full identifier -> module index:
every name that a fix run would be able to resolve, which module satisfies
it, and how it's bound there.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			return runRegistryInspect(cobraCmd, *cfgFile, dir)
		},
	}
}

func runRegistryInspect(cmd *cobra.Command, cfgFile, dir string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	rcfg := cfg.Registry

	timeout := rcfg.SandboxTimeout
	if timeout <= 0 {
		timeout = defaultRegistryInspectTimeout
	}

	nodeBinary := rcfg.NodeBinary
	if nodeBinary == "" {
		nodeBinary = "node"
	}

	manager, err := registry.NewManager(nodeBinary, timeout, rcfg.MemCacheSize, nil)
	if err != nil {
		return fmt.Errorf("registry inspect: %w", err)
	}

	reg, err := manager.Populate(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("registry inspect: %w", err)
	}

	renderRegistryTable(cmd.OutOrStdout(), reg)

	return nil
}

func renderRegistryTable(out io.Writer, reg *registry.Registry) {
	entries := reg.Entries()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}

	sort.Strings(names)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"identifier", "module", "kind", "priority"})

	for _, name := range names {
		info := entries[name]
		tbl.AppendRow(table.Row{name, info.ID, info.Type, priorityLabel(info.Priority)})
	}

	tbl.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d identifiers", len(names))})
	tbl.Render()
}

func priorityLabel(p registry.Priority) string {
	switch p {
	case registry.PriorityFile:
		return "file"
	case registry.PriorityDep:
		return "dependency"
	case registry.PriorityBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}
