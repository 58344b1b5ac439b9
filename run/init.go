package main

import (
	"fmt"
	"os"

	"github.com/maseology/modflow/config"
	"github.com/spf13/cobra"
)

const defaultProject = "mfchd.toml"

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example TOML project file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp := defaultProject
			if len(args) == 1 {
				fp = args[0]
			}
			flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(fp, flag, 0644)
			if err != nil {
				if os.IsExist(err) {
					return fmt.Errorf("%s already exists (use --force to overwrite)", fp)
				}
				return err
			}
			defer f.Close()
			if err := config.Encode(f, config.Example()); err != nil {
				return err
			}
			a.logger.Debug("example project written", "file", fp)
			fmt.Fprintln(cmd.OutOrStdout(), fp)
			return f.Close()
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
