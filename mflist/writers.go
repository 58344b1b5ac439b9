package mflist

import (
	"fmt"
	"strings"
)

const colWidth = 10

// LineWriter receives output one line at a time; *mmio.TXTwriter satisfies it.
type LineWriter interface {
	WriteLine(line string) error
}

// WriteTransient writes every stress period from 0 to max(nper, last defined
// period + 1): an ITMP line, then the period's records when it is defined.
// Writing stops at the first error.
func (l *List) WriteTransient(w LineWriter, nper int) error {
	if n := l.Nper(); n > nper {
		nper = n
	}
	for kper := 0; kper < nper; kper++ {
		itmp := l.Itmp(kper)
		if err := w.WriteLine(fmt.Sprintf(" %9d %9d # stress period %d", itmp, 0, kper+1)); err != nil {
			return fmt.Errorf("WriteTransient failed: %w", err)
		}
		if itmp <= 0 {
			continue
		}
		for n, r := range l.data[kper] {
			s, err := l.FormatRecord(r)
			if err != nil {
				return fmt.Errorf("WriteTransient: stress period %d, record %d: %w", kper+1, n, err)
			}
			if err := w.WriteLine(s); err != nil {
				return fmt.Errorf("WriteTransient failed: %w", err)
			}
		}
	}
	return nil
}

// FormatRecord renders one record as fixed 10-character columns. Cell
// indices (k, i, j, node) are written one-based. Reals lose significant
// digits until they fit their column; an integer too wide for its column
// returns ErrSchemaMismatch.
func (l *List) FormatRecord(r Record) (string, error) {
	var sb strings.Builder
	for n, f := range l.dtype {
		s, err := formatField(f, r[n])
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}

func formatField(f Field, v float64) (string, error) {
	switch f.Kind {
	case Int:
		iv := int(v)
		if f.isIndex() {
			iv++
		}
		s := fmt.Sprintf("%*d", colWidth, iv)
		if len(s) > colWidth {
			return "", fmt.Errorf("%w: field %q value %d is wider than %d columns", ErrSchemaMismatch, f.Name, iv, colWidth)
		}
		return s, nil
	case Float32:
		return formatReal(float64(float32(v)), 32), nil
	default:
		return formatReal(v, 64), nil
	}
}

// formatReal prints x with up to 6 significant digits, dropping digits until
// it fits colWidth. One digit always fits (e.g. "-1E-308").
func formatReal(x float64, bits int) string {
	s := formatG(x, 6, bits)
	for p := 5; p > 0 && len(s) > colWidth; p-- {
		s = formatG(x, p, bits)
	}
	return s
}

func formatG(x float64, prec, bits int) string {
	if bits == 32 {
		return fmt.Sprintf("%*.*G", colWidth, prec, float32(x))
	}
	return fmt.Sprintf("%*.*G", colWidth, prec, x)
}
