// Package mflist stores MODFLOW list-based boundary data (wells, constant heads,
// drains, ...) keyed by stress period, and writes/reads it in the fixed text
// format MODFLOW expects.
//
// A stress period with no entry reuses the most recent prior period's records
// (carry-forward). Periods before the first defined one have no records.
package mflist

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrSchemaMismatch is returned when records do not conform to the list schema.
	ErrSchemaMismatch = errors.New("record does not match schema")
	// ErrBadPeriod is returned for negative stress-period indices.
	ErrBadPeriod = errors.New("invalid stress period")
)

// PeriodData is raw user input: stress period -> records -> field values.
type PeriodData map[int][][]float64

// Sequence converts a nested list, outer index = stress period, to PeriodData.
// A nil inner list leaves the period undefined so the previous one carries forward.
func Sequence(spd [][][]float64) PeriodData {
	pd := make(PeriodData, len(spd))
	for kper, recs := range spd {
		if recs == nil {
			continue
		}
		pd[kper] = recs
	}
	return pd
}

// List is a transient list of records
type List struct {
	dtype Schema
	data  map[int][]Record
}

// New builds a List from the given schema and per-period values.
func New(dtype Schema, pd PeriodData) (*List, error) {
	if err := dtype.Validate(); err != nil {
		return nil, err
	}
	l := &List{
		dtype: append(Schema(nil), dtype...),
		data:  make(map[int][]Record, len(pd)),
	}
	for _, kper := range sortedKeys(pd) {
		if err := l.Set(kper, pd[kper]); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Schema returns a copy of the record layout
func (l *List) Schema() Schema { return append(Schema(nil), l.dtype...) }

// Len returns the number of explicitly defined stress periods.
func (l *List) Len() int { return len(l.data) }

// Periods returns the defined stress periods in chronological order.
func (l *List) Periods() []int {
	o := make([]int, 0, len(l.data))
	for k := range l.data {
		o = append(o, k)
	}
	sort.Ints(o)
	return o
}

// Set replaces the records of one stress period. An empty (non-nil) slice
// marks the period as having no active records.
func (l *List) Set(kper int, recs [][]float64) error {
	if kper < 0 {
		return fmt.Errorf("%w: %d", ErrBadPeriod, kper)
	}
	rs := make([]Record, len(recs))
	for n, v := range recs {
		r, err := l.dtype.cast(v)
		if err != nil {
			return fmt.Errorf("stress period %d, record %d: %w", kper, n, err)
		}
		rs[n] = r
	}
	l.data[kper] = rs
	return nil
}

// Delete removes a stress period so that the previous one carries forward.
func (l *List) Delete(kper int) { delete(l.data, kper) }

// Get returns the records active in kper, following carry-forward. The
// boolean is false when kper precedes every defined period.
func (l *List) Get(kper int) ([]Record, bool) {
	if rs, ok := l.data[kper]; ok {
		return rs, true
	}
	last := -1
	for k := range l.data {
		if k < kper && k > last {
			last = k
		}
	}
	if last < 0 {
		return nil, false
	}
	return l.data[last], true
}

// Itmp returns MODFLOW's ITMP flag for kper: the record count of a defined
// period, -1 to reuse the previous period, 0 before the first defined period.
func (l *List) Itmp(kper int) int {
	if rs, ok := l.data[kper]; ok {
		return len(rs)
	}
	if _, ok := l.Get(kper); ok {
		return -1
	}
	return 0
}

// MaxActive returns the largest record count over all stress periods (mxact).
func (l *List) MaxActive() int {
	mx := 0
	for _, rs := range l.data {
		if len(rs) > mx {
			mx = len(rs)
		}
	}
	return mx
}

// Nper returns the number of stress periods needed to cover the defined data.
func (l *List) Nper() int {
	n := 0
	for k := range l.data {
		if k+1 > n {
			n = k + 1
		}
	}
	return n
}

func sortedKeys(pd PeriodData) []int {
	o := make([]int, 0, len(pd))
	for k := range pd {
		o = append(o, k)
	}
	sort.Ints(o)
	return o
}
