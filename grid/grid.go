package grid

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maseology/mmio"
)

// Definition is the structured (layer, row, column) extent of a MODFLOW model
type Definition struct {
	Nlay, Nrow, Ncol int
}

// New returns a grid definition, checking that every dimension is positive.
func New(nlay, nrow, ncol int) (*Definition, error) {
	if nlay <= 0 || nrow <= 0 || ncol <= 0 {
		return nil, fmt.Errorf("grid.New: invalid dimensions (nlay=%d, nrow=%d, ncol=%d)", nlay, nrow, ncol)
	}
	return &Definition{Nlay: nlay, Nrow: nrow, Ncol: ncol}, nil
}

// Ncells total number of cells
func (gd *Definition) Ncells() int { return gd.Nlay * gd.Nrow * gd.Ncol }

// Contains reports whether the zero-based cell index lies in the grid.
func (gd *Definition) Contains(k, i, j int) bool {
	return k >= 0 && k < gd.Nlay && i >= 0 && i < gd.Nrow && j >= 0 && j < gd.Ncol
}

// CellID returns the zero-based cell id, layer-major.
func (gd *Definition) CellID(k, i, j int) int {
	return (k*gd.Nrow+i)*gd.Ncol + j
}

func (gd *Definition) String() string {
	return fmt.Sprintf("%d layers, %d rows, %d columns (%d cells)", gd.Nlay, gd.Nrow, gd.Ncol, gd.Ncells())
}

// ReadGDEF imports a grid definition file: nlay, nrow and ncol on the first
// three non-comment lines. Lines starting with '#' are skipped.
func ReadGDEF(fp string) (*Definition, error) {
	if _, ok := mmio.FileExists(fp); !ok {
		return nil, fmt.Errorf("ReadGDEF: %s: %w", fp, os.ErrNotExist)
	}
	ln, err := mmio.ReadTextLines(fp)
	if err != nil {
		return nil, fmt.Errorf("ReadGDEF failed: %w", err)
	}

	a := make([]string, 0, 3)
	for _, s := range ln {
		if len(a) == 3 {
			break
		}
		if s == "" || s[0] == '#' {
			continue
		}
		a = append(a, strings.Fields(s)[0])
	}
	if len(a) < 3 {
		return nil, fmt.Errorf("ReadGDEF: %s: expected nlay, nrow, ncol; found %d values", fp, len(a))
	}

	stErr := make([]string, 0)
	errfunc := func(v string, err error) {
		stErr = append(stErr, fmt.Sprintf("failed to read '%v': %v", v, err))
	}
	nl, err := strconv.Atoi(a[0])
	if err != nil {
		errfunc("NLAY", err)
	}
	nr, err := strconv.Atoi(a[1])
	if err != nil {
		errfunc("NROW", err)
	}
	nc, err := strconv.Atoi(a[2])
	if err != nil {
		errfunc("NCOL", err)
	}
	if len(stErr) > 0 {
		return nil, fmt.Errorf("ReadGDEF: %s: %s", fp, strings.Join(stErr, "; "))
	}
	return New(nl, nr, nc)
}
