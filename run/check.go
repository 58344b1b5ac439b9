package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <project>",
		Short: "Check CHD records against the model grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.build(args[0])
			if err != nil {
				return err
			}
			if m.Grid == nil {
				a.logger.Warn("no grid defined; bounds not checked", "model", m.Name)
			}
			if err := m.Check(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", m.Name)
			return nil
		},
	}
}
