package modflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/maseology/mmio"
	"github.com/maseology/modflow/mflist"
)

const chdHeading = "# CHD for MODFLOW, generated by Flopy."

// ErrOutOfGrid is returned by Check for records outside the model grid.
var ErrOutOfGrid = errors.New("cell outside model grid")

// Chd is the MODFLOW Constant-Head package. Each record holds a cell
// (k, i, j, zero-based) and the heads at the start and end of the stress period.
type Chd struct {
	pkgbase
	Heading          string
	StressPeriodData *mflist.List
}

type chdOptions struct {
	dtype     mflist.Schema
	extension string
	unit      int
}

// ChdOption overrides a Chd default
type ChdOption func(*chdOptions)

// WithDtype replaces the default record schema.
func WithDtype(dt mflist.Schema) ChdOption { return func(o *chdOptions) { o.dtype = dt } }

// WithExtension sets the output file extension (default "chd").
func WithExtension(ext string) ChdOption { return func(o *chdOptions) { o.extension = ext } }

// WithUnitNumber sets the name-file unit number (default 24).
func WithUnitNumber(n int) ChdOption { return func(o *chdOptions) { o.unit = n } }

// DefaultChdDtype k, i, j, shead, ehead
func DefaultChdDtype() mflist.Schema {
	return mflist.Schema{
		{Name: "k", Kind: mflist.Int},
		{Name: "i", Kind: mflist.Int},
		{Name: "j", Kind: mflist.Int},
		{Name: "shead", Kind: mflist.Float32},
		{Name: "ehead", Kind: mflist.Float32},
	}
}

func newChdOptions(opts []ChdOption) chdOptions {
	o := chdOptions{
		dtype:     DefaultChdDtype(),
		extension: "chd",
		unit:      24,
	}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// NewChd builds a constant-head package for m from per-stress-period records.
// Records must match the dtype (default DefaultChdDtype) or the returned error
// matches mflist.ErrSchemaMismatch. The package is not registered with m;
// call m.AddPackage.
func NewChd(m *Model, spd mflist.PeriodData, opts ...ChdOption) (*Chd, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	o := newChdOptions(opts)
	l, err := mflist.New(o.dtype, spd)
	if err != nil {
		return nil, fmt.Errorf("NewChd: %w", err)
	}
	return newChd(m, l, o), nil
}

func newChd(m *Model, l *mflist.List, o chdOptions) *Chd {
	return &Chd{
		pkgbase: pkgbase{
			parent:    m,
			ftype:     "CHD",
			extension: o.extension,
			unit:      o.unit,
			url:       "chd.htm",
		},
		Heading:          chdHeading,
		StressPeriodData: l,
	}
}

func (c *Chd) String() string { return "CHD package class" }

// Ncells returns the maximum number of constant-head cells in any stress
// period (MXACTC).
func (c *Chd) Ncells() int { return c.StressPeriodData.MaxActive() }

// WriteFile writes the package file, truncating any existing one. The file
// is closed even when a write fails.
func (c *Chd) WriteFile() error {
	tw, err := mmio.NewTXTwriter(c.FnPath())
	if err != nil {
		return fmt.Errorf("Chd.WriteFile failed: %w", err)
	}
	defer tw.Close()

	if err := c.write(tw); err != nil {
		return fmt.Errorf("Chd.WriteFile failed: %w", err)
	}
	if err := tw.Writer.Flush(); err != nil {
		return fmt.Errorf("Chd.WriteFile failed: %w", err)
	}
	return nil
}

func (c *Chd) write(w mflist.LineWriter) error {
	if err := w.WriteLine(c.Heading); err != nil {
		return err
	}
	if err := w.WriteLine(fmt.Sprintf(" %9d", c.Ncells())); err != nil {
		return err
	}
	return c.StressPeriodData.WriteTransient(w, c.Parent().Nper)
}

// Check verifies that every record's cell lies inside the model grid and
// warns of cells listed twice in one stress period. It is a no-op when the
// model has no grid or the dtype lacks k, i or j.
func (c *Chd) Check() error {
	m := c.Parent()
	gd := m.Grid
	if gd == nil {
		return nil
	}
	dt := c.StressPeriodData.Schema()
	ik, ii, ij := dt.Index("k"), dt.Index("i"), dt.Index("j")
	if ik < 0 || ii < 0 || ij < 0 {
		return nil
	}

	var errs []error
	for _, kper := range c.StressPeriodData.Periods() {
		rs, _ := c.StressPeriodData.Get(kper)
		seen := make(map[int]bool, len(rs))
		for n, r := range rs {
			k, i, j := r.Int(ik), r.Int(ii), r.Int(ij)
			if !gd.Contains(k, i, j) {
				errs = append(errs, fmt.Errorf("%w: stress period %d, record %d (k=%d, i=%d, j=%d)", ErrOutOfGrid, kper, n, k, i, j))
				continue
			}
			if cid := gd.CellID(k, i, j); seen[cid] {
				m.Logger().Warn("duplicate constant-head cell", "kper", kper, "record", n, "cell", cid)
			} else {
				seen[cid] = true
			}
		}
	}
	return errors.Join(errs...)
}

// LoadChd reads a CHD file written by WriteFile. The dtype option must match
// the one the file was written with. The package is not registered with m.
func LoadChd(fp string, m *Model, opts ...ChdOption) (*Chd, error) {
	if m == nil {
		return nil, ErrNoModel
	}
	o := newChdOptions(opts)

	a, err := mmio.ReadTextLines(fp)
	if err != nil {
		return nil, fmt.Errorf("LoadChd failed: %w", err)
	}

	mxactc, ln, ok := 0, 0, false
	for ; ln < len(a); ln++ {
		if a[ln] == "" || a[ln][0] == '#' {
			continue
		}
		sp := strings.Fields(a[ln])
		n, err := strconv.Atoi(sp[0])
		if err != nil {
			return nil, fmt.Errorf("LoadChd: %s: bad MXACTC %q: %w", fp, sp[0], err)
		}
		mxactc, ok = n, true
		break
	}
	if !ok {
		return nil, fmt.Errorf("LoadChd: %s: missing MXACTC", fp)
	}

	l, nper, err := mflist.ReadTransient(a[ln+1:], o.dtype)
	if err != nil {
		return nil, fmt.Errorf("LoadChd: %s: %w", fp, err)
	}
	if l.MaxActive() > mxactc {
		return nil, fmt.Errorf("LoadChd: %s: %d records in a stress period exceeds MXACTC %d", fp, l.MaxActive(), mxactc)
	}
	if nper > m.Nper {
		m.Logger().Debug("CHD file has more stress periods than the model", "file", fp, "nper", nper, "model_nper", m.Nper)
	}
	return newChd(m, l, o), nil
}
