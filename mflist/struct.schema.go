package mflist

import (
	"fmt"
	"math"
	"strings"
)

// Kind is the storage type of a single record field
type Kind int

const (
	Int Kind = iota
	Float32
	Float64
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a dtype name ("int", "float32", "float64", ...) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "int32", "int64", "integer":
		return Int, nil
	case "float32", "float", "single", "real":
		return Float32, nil
	case "float64", "double":
		return Float64, nil
	}
	return Int, fmt.Errorf("%w: unknown field kind %q", ErrSchemaMismatch, s)
}

// Field is a named, typed record column
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered field layout shared by every record of a List.
type Schema []Field

// Names returns the field names in order
func (s Schema) Names() []string {
	o := make([]string, len(s))
	for i, f := range s {
		o[i] = f.Name
	}
	return o
}

// Index returns the position of the named field, or -1.
func (s Schema) Index(name string) int {
	for i, f := range s {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Validate checks that the schema has fields and that their names are unique.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: schema has no fields", ErrSchemaMismatch)
	}
	seen := make(map[string]bool, len(s))
	for i, f := range s {
		n := strings.ToLower(f.Name)
		if n == "" {
			return fmt.Errorf("%w: field %d has no name", ErrSchemaMismatch, i)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate field %q", ErrSchemaMismatch, f.Name)
		}
		if f.Kind < Int || f.Kind > Float64 {
			return fmt.Errorf("%w: field %q has unknown kind %v", ErrSchemaMismatch, f.Name, f.Kind)
		}
		seen[n] = true
	}
	return nil
}

// cast converts raw values to a Record, applying each field's kind.
func (s Schema) cast(v []float64) (Record, error) {
	if len(v) != len(s) {
		return nil, fmt.Errorf("%w: got %d fields, want %d (%s)", ErrSchemaMismatch, len(v), len(s), strings.Join(s.Names(), ","))
	}
	r := make(Record, len(v))
	for i, f := range s {
		x := v[i]
		switch f.Kind {
		case Int:
			if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= math.MaxInt32+1 {
				return nil, fmt.Errorf("%w: field %q cannot hold %v", ErrSchemaMismatch, f.Name, x)
			}
			r[i] = math.Trunc(x)
		case Float32:
			if !math.IsNaN(x) && !math.IsInf(x, 0) && math.Abs(x) > math.MaxFloat32 {
				return nil, fmt.Errorf("%w: field %q value %v overflows float32", ErrSchemaMismatch, f.Name, x)
			}
			r[i] = float64(float32(x))
		default:
			r[i] = x
		}
	}
	return r, nil
}

// isIndex reports whether the field is a zero-based cell index that
// MODFLOW expects one-based.
func (f Field) isIndex() bool {
	switch strings.ToLower(f.Name) {
	case "k", "i", "j", "node":
		return f.Kind == Int
	}
	return false
}

// Record holds one row of values, already cast to the schema's kinds.
type Record []float64

// Int returns field n as an int
func (r Record) Int(n int) int { return int(r[n]) }

