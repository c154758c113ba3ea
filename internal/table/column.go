package table

import (
	"fmt"
)

// Kind is the storage type of a column.
type Kind int

const (
	// KindInt holds coded integers and 0/1 flags.
	KindInt Kind = iota
	// KindFloat holds continuous values.
	KindFloat
	// KindString holds labels; every cell may be undefined.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Numeric reports whether the kind takes part in numeric reductions.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column is a named, typed, immutable vector of cells.
//
// Constructors copy their input so the caller may reuse its slices.
// Accessors that return slices also return copies.
type Column struct {
	name    string
	kind    Kind
	ints    []int64
	floats  []float64
	strs    []string
	defined []bool
}

// NewIntColumn creates an integer column.
func NewIntColumn(name string, values []int64) *Column {
	v := make([]int64, len(values))
	copy(v, values)
	return &Column{name: name, kind: KindInt, ints: v}
}

// NewFloatColumn creates a float column.
func NewFloatColumn(name string, values []float64) *Column {
	v := make([]float64, len(values))
	copy(v, values)
	return &Column{name: name, kind: KindFloat, floats: v}
}

// NewStringColumn creates a label column. defined marks which cells hold a
// value; a nil mask means every cell is defined.
func NewStringColumn(name string, values []string, defined []bool) *Column {
	v := make([]string, len(values))
	copy(v, values)
	mask := make([]bool, len(values))
	if defined == nil {
		for i := range mask {
			mask[i] = true
		}
	} else {
		copy(mask, defined)
	}
	return &Column{name: name, kind: KindString, strs: v, defined: mask}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the storage kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int {
	switch c.kind {
	case KindInt:
		return len(c.ints)
	case KindFloat:
		return len(c.floats)
	default:
		return len(c.strs)
	}
}

// IsNumeric reports whether the column is Int or Float.
func (c *Column) IsNumeric() bool { return c.kind.Numeric() }

// Float returns cell i as float64. It panics for string columns.
func (c *Column) Float(i int) float64 {
	switch c.kind {
	case KindInt:
		return float64(c.ints[i])
	case KindFloat:
		return c.floats[i]
	default:
		panic(fmt.Sprintf("table: Float called on %s column %q", c.kind, c.name))
	}
}

// Int returns cell i of an Int column. Float cells are truncated.
func (c *Column) Int(i int) int64 {
	switch c.kind {
	case KindInt:
		return c.ints[i]
	case KindFloat:
		return int64(c.floats[i])
	default:
		panic(fmt.Sprintf("table: Int called on %s column %q", c.kind, c.name))
	}
}

// Label returns cell i of a String column and whether it is defined.
func (c *Column) Label(i int) (string, bool) {
	if c.kind != KindString {
		panic(fmt.Sprintf("table: Label called on %s column %q", c.kind, c.name))
	}
	return c.strs[i], c.defined[i]
}

// Floats returns the numeric cells widened to float64. It returns nil for
// string columns.
func (c *Column) Floats() []float64 {
	switch c.kind {
	case KindInt:
		out := make([]float64, len(c.ints))
		for i, v := range c.ints {
			out[i] = float64(v)
		}
		return out
	case KindFloat:
		out := make([]float64, len(c.floats))
		copy(out, c.floats)
		return out
	default:
		return nil
	}
}

// Ints returns a copy of an Int column's cells, or nil for other kinds.
func (c *Column) Ints() []int64 {
	if c.kind != KindInt {
		return nil
	}
	out := make([]int64, len(c.ints))
	copy(out, c.ints)
	return out
}

// Labels returns copies of a String column's values and definedness mask.
func (c *Column) Labels() ([]string, []bool) {
	if c.kind != KindString {
		return nil, nil
	}
	v := make([]string, len(c.strs))
	copy(v, c.strs)
	m := make([]bool, len(c.defined))
	copy(m, c.defined)
	return v, m
}

// Undefined returns the number of undefined cells. Numeric cells are
// undefined when they hold NaN.
func (c *Column) Undefined() int {
	n := 0
	switch c.kind {
	case KindFloat:
		for _, v := range c.floats {
			if v != v {
				n++
			}
		}
	case KindString:
		for _, ok := range c.defined {
			if !ok {
				n++
			}
		}
	}
	return n
}

// Rename returns a column with the same cells under a new name. Storage is
// shared, which is safe because columns are never mutated.
func (c *Column) Rename(name string) *Column {
	cp := *c
	cp.name = name
	return &cp
}
