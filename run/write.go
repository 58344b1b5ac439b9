package main

import (
	"fmt"

	"github.com/maseology/modflow"
	"github.com/maseology/modflow/config"
	"github.com/spf13/cobra"
)

func newWriteCmd(a *app) *cobra.Command {
	var noCheck bool
	cmd := &cobra.Command{
		Use:   "write <project>",
		Short: "Write the CHD package and name file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.build(args[0])
			if err != nil {
				return err
			}
			if !noCheck {
				if err := m.Check(); err != nil {
					return fmt.Errorf("check failed (use --no-check to write anyway): %w", err)
				}
			}
			if err := m.WriteInput(); err != nil {
				return err
			}
			for _, p := range m.Packages() {
				if c, ok := p.(*modflow.Chd); ok {
					a.logger.Info("wrote package", "ftype", c.Ftype(), "file", c.FnPath(), "mxactc", c.Ncells())
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.NameFilePath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&noCheck, "no-check", false, "skip the grid bounds check")
	return cmd
}

// build loads a project file and assembles its model.
func (a *app) build(fp string) (*modflow.Model, error) {
	p, err := config.Load(fp)
	if err != nil {
		return nil, err
	}
	m, chd, err := p.Build(a.logger, a.workspace)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("project loaded", "file", fp, "model", m.Name, "nper", m.Nper, "periods", chd.StressPeriodData.Len())
	if m.Grid != nil {
		a.logger.Debug("grid", "definition", m.Grid.String())
	}
	return m, nil
}
