package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// app holds the global flags and the logger shared by every subcommand.
type app struct {
	verbose   bool
	workspace string
	logger    *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mfchd",
		Short: "Write MODFLOW constant-head (CHD) package files",
		Long: `mfchd builds MODFLOW-2005 constant-head (CHD) input from a project file
and writes the CHD package and the model name file.

Project files may be TOML, YAML, JSON or HCL. Run 'mfchd init' for an example.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "mfchd"})
			if a.verbose {
				a.logger.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().StringVarP(&a.workspace, "workspace", "w", "", "output directory (overrides model.workspace)")

	root.AddCommand(newWriteCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newInitCmd(a))
	return root
}
