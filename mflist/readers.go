package mflist

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadTransient reads stress-period blocks written by WriteTransient from
// lines, as returned by mmio.ReadTextLines. It returns the list and the
// number of stress periods read.
func ReadTransient(lines []string, dtype Schema) (*List, int, error) {
	l, err := New(dtype, nil)
	if err != nil {
		return nil, 0, err
	}

	ln, kper, prev := 0, 0, 0
	next := func() (string, bool) {
		for ln < len(lines) {
			s := strings.TrimRight(lines[ln], "\r\n")
			ln++
			if strings.TrimSpace(s) == "" {
				continue
			}
			return s, true
		}
		return "", false
	}

	for {
		s, ok := next()
		if !ok {
			break
		}
		sp := strings.Fields(stripComment(s))
		if len(sp) == 0 {
			return nil, 0, fmt.Errorf("ReadTransient: line %d: missing ITMP", ln)
		}
		itmp, err := strconv.Atoi(sp[0])
		if err != nil {
			return nil, 0, fmt.Errorf("ReadTransient: line %d: bad ITMP %q: %w", ln, sp[0], err)
		}

		switch {
		case itmp < 0:
			// reuse previous; a 0 directly before the first reuse was an
			// explicitly empty period, not a leading undefined one
			if l.Len() == 0 && kper > 0 && prev == 0 {
				l.data[kper-1] = []Record{}
			}
		case itmp == 0:
			if l.Len() > 0 {
				l.data[kper] = []Record{}
			}
		default:
			rs := make([]Record, 0, itmp)
			for n := 0; n < itmp; n++ {
				s, ok := next()
				if !ok {
					return nil, 0, fmt.Errorf("ReadTransient: stress period %d: expected %d records, found %d", kper+1, itmp, n)
				}
				rec, err := l.parseRecord(s)
				if err != nil {
					return nil, 0, fmt.Errorf("ReadTransient: line %d: %w", ln, err)
				}
				rs = append(rs, rec)
			}
			l.data[kper] = rs
		}
		prev = itmp
		kper++
	}
	return l, kper, nil
}

// parseRecord splits on whitespace, falling back to fixed 10-character
// columns when adjacent values touch. Lines with their leading blanks
// trimmed are right-aligned to the full record width first.
func (l *List) parseRecord(s string) (Record, error) {
	sp := strings.Fields(s)
	if len(sp) != len(l.dtype) {
		s = strings.TrimRight(stripComment(s), " \t")
		if w := len(l.dtype) * colWidth; len(s) < w {
			s = strings.Repeat(" ", w-len(s)) + s
		}
		sp = sp[:0]
		for n := 0; n < len(l.dtype); n++ {
			b, e := n*colWidth, (n+1)*colWidth
			if b >= len(s) {
				break
			}
			if e > len(s) {
				e = len(s)
			}
			sp = append(sp, strings.TrimSpace(s[b:e]))
		}
	}

	v := make([]float64, len(sp))
	for n, t := range sp {
		x, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: field %d %q: %v", ErrSchemaMismatch, n, t, err)
		}
		if n < len(l.dtype) && l.dtype[n].isIndex() {
			x--
		}
		v[n] = x
	}
	return l.dtype.cast(v)
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}
