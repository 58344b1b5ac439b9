package config

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/maseology/modflow"
	"github.com/maseology/modflow/grid"
	"github.com/maseology/modflow/mflist"
)

// Grid returns the grid definition described by the model section, or nil
// when none is given. A relative Gdef path is resolved against the project
// file's directory.
func (p *Project) Grid() (*grid.Definition, error) {
	m := p.Model
	if m.Gdef != "" {
		fp := m.Gdef
		if !filepath.IsAbs(fp) && p.dir != "" {
			fp = filepath.Join(p.dir, fp)
		}
		return grid.ReadGDEF(fp)
	}
	if m.Nlay == 0 && m.Nrow == 0 && m.Ncol == 0 {
		return nil, nil
	}
	return grid.New(m.Nlay, m.Nrow, m.Ncol)
}

// Schema converts the dtype override, returning nil when none is given.
func (c *ChdConfig) Schema() (mflist.Schema, error) {
	if len(c.Dtype) == 0 {
		return nil, nil
	}
	dt := make(mflist.Schema, len(c.Dtype))
	for n, f := range c.Dtype {
		k, err := mflist.ParseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("chd.dtype %q: %w", f.Name, err)
		}
		dt[n] = mflist.Field{Name: f.Name, Kind: k}
	}
	return dt, nil
}

// PeriodData converts the period list to per-period records.
func (c *ChdConfig) PeriodData() mflist.PeriodData {
	pd := make(mflist.PeriodData, len(c.Periods))
	for _, sp := range c.Periods {
		recs := sp.Records
		if recs == nil {
			recs = [][]float64{}
		}
		pd[sp.Kper] = recs
	}
	return pd
}

// Build creates the model, its CHD package and registers the package. A
// non-empty workspace overrides model.workspace.
func (p *Project) Build(logger *log.Logger, workspace string) (*modflow.Model, *modflow.Chd, error) {
	if p.Chd == nil {
		return nil, nil, ErrNoChd
	}
	gd, err := p.Grid()
	if err != nil {
		return nil, nil, fmt.Errorf("Build: %w", err)
	}
	ws := p.Model.Workspace
	if workspace != "" {
		ws = workspace
	} else if !filepath.IsAbs(ws) && p.dir != "" {
		ws = filepath.Join(p.dir, ws)
	}

	opts := []modflow.ModelOption{
		modflow.WithWorkspace(ws),
		modflow.WithNper(p.Model.Nper),
	}
	if gd != nil {
		opts = append(opts, modflow.WithGrid(gd))
	}
	if logger != nil {
		opts = append(opts, modflow.WithLogger(logger))
	}
	m := modflow.NewModel(p.Model.Name, opts...)

	copts := []modflow.ChdOption{
		modflow.WithExtension(p.Chd.Extension),
		modflow.WithUnitNumber(p.Chd.UnitNumber),
	}
	dt, err := p.Chd.Schema()
	if err != nil {
		return nil, nil, fmt.Errorf("Build: %w", err)
	}
	if dt != nil {
		copts = append(copts, modflow.WithDtype(dt))
	}
	chd, err := modflow.NewChd(m, p.Chd.PeriodData(), copts...)
	if err != nil {
		return nil, nil, fmt.Errorf("Build: %w", err)
	}
	if err := m.AddPackage(chd); err != nil {
		return nil, nil, fmt.Errorf("Build: %w", err)
	}
	return m, chd, nil
}
