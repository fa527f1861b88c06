package frame

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// Type is the storage type of a column.
type Type int

const (
	Bool Type = iota
	Int
	Float
	String
)

// String returns the type name used in error messages.
func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int64"
	case Float:
		return "float64"
	case String:
		return "str"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Column is a named, typed, immutable vector of values that may contain
// missing entries.
type Column interface {
	Name() string
	Type() Type
	Len() int
	IsNA(i int) bool
}

// validity is an optional missing-value mask shared by all column kinds.
// A nil mask means every value is present.
type validity []bool

func (v validity) isNA(i int) bool {
	return v != nil && !v[i]
}

func copyMask(valid []bool, n int) (validity, error) {
	if valid == nil {
		return nil, nil
	}
	if len(valid) != n {
		return nil, errors.NewDimensionError("NewColumn", n, len(valid), 0)
	}
	out := make(validity, n)
	copy(out, valid)
	return out, nil
}

// BoolColumn holds boolean values.
type BoolColumn struct {
	name  string
	data  []bool
	valid validity
}

// NewBoolColumn copies data into a new column. valid may be nil; otherwise
// valid[i] == false marks row i as missing.
func NewBoolColumn(name string, data []bool, valid []bool) (*BoolColumn, error) {
	mask, err := copyMask(valid, len(data))
	if err != nil {
		return nil, err
	}
	return &BoolColumn{name: name, data: append([]bool(nil), data...), valid: mask}, nil
}

// Bools is a shorthand for a column with no missing values.
func Bools(name string, data ...bool) *BoolColumn {
	c, _ := NewBoolColumn(name, data, nil)
	return c
}

func (c *BoolColumn) Name() string     { return c.name }
func (c *BoolColumn) Type() Type       { return Bool }
func (c *BoolColumn) Len() int         { return len(c.data) }
func (c *BoolColumn) IsNA(i int) bool  { return c.valid.isNA(i) }
func (c *BoolColumn) Value(i int) bool { return c.data[i] }

// IntColumn holds 64-bit signed integers.
type IntColumn struct {
	name  string
	data  []int64
	valid validity
}

// NewIntColumn copies data into a new column.
func NewIntColumn(name string, data []int64, valid []bool) (*IntColumn, error) {
	mask, err := copyMask(valid, len(data))
	if err != nil {
		return nil, err
	}
	return &IntColumn{name: name, data: append([]int64(nil), data...), valid: mask}, nil
}

// Ints is a shorthand for a column with no missing values.
func Ints(name string, data ...int64) *IntColumn {
	c, _ := NewIntColumn(name, data, nil)
	return c
}

// Range builds an int column holding 0..n-1.
func Range(name string, n int) *IntColumn {
	data := make([]int64, n)
	for i := range data {
		data[i] = int64(i)
	}
	return &IntColumn{name: name, data: data}
}

func (c *IntColumn) Name() string      { return c.name }
func (c *IntColumn) Type() Type        { return Int }
func (c *IntColumn) Len() int          { return len(c.data) }
func (c *IntColumn) IsNA(i int) bool   { return c.valid.isNA(i) }
func (c *IntColumn) Value(i int) int64 { return c.data[i] }

// FloatColumn holds float64 values. NaN is treated as missing.
type FloatColumn struct {
	name  string
	data  []float64
	valid validity
}

// NewFloatColumn copies data into a new column.
func NewFloatColumn(name string, data []float64, valid []bool) (*FloatColumn, error) {
	mask, err := copyMask(valid, len(data))
	if err != nil {
		return nil, err
	}
	return &FloatColumn{name: name, data: append([]float64(nil), data...), valid: mask}, nil
}

// Floats is a shorthand for a column whose only missing values are NaNs.
func Floats(name string, data ...float64) *FloatColumn {
	c, _ := NewFloatColumn(name, data, nil)
	return c
}

func (c *FloatColumn) Name() string { return c.name }
func (c *FloatColumn) Type() Type   { return Float }
func (c *FloatColumn) Len() int     { return len(c.data) }
func (c *FloatColumn) IsNA(i int) bool {
	return c.valid.isNA(i) || math.IsNaN(c.data[i])
}
func (c *FloatColumn) Value(i int) float64 { return c.data[i] }

// Values returns a copy of the underlying data. Missing entries are NaN.
func (c *FloatColumn) Values() []float64 {
	out := make([]float64, len(c.data))
	for i, v := range c.data {
		if c.valid.isNA(i) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// StringColumn holds UTF-8 strings.
type StringColumn struct {
	name  string
	data  []string
	valid validity
}

// NewStringColumn copies data into a new column.
func NewStringColumn(name string, data []string, valid []bool) (*StringColumn, error) {
	mask, err := copyMask(valid, len(data))
	if err != nil {
		return nil, err
	}
	return &StringColumn{name: name, data: append([]string(nil), data...), valid: mask}, nil
}

// Strings is a shorthand for a column with no missing values.
func Strings(name string, data ...string) *StringColumn {
	c, _ := NewStringColumn(name, data, nil)
	return c
}

func (c *StringColumn) Name() string       { return c.name }
func (c *StringColumn) Type() Type         { return String }
func (c *StringColumn) Len() int           { return len(c.data) }
func (c *StringColumn) IsNA(i int) bool    { return c.valid.isNA(i) }
func (c *StringColumn) Value(i int) string { return c.data[i] }

// slice returns rows [i, j) of c sharing its backing arrays.
func slice(c Column, i, j int) Column {
	switch col := c.(type) {
	case *BoolColumn:
		return &BoolColumn{name: col.name, data: col.data[i:j], valid: col.valid.slice(i, j)}
	case *IntColumn:
		return &IntColumn{name: col.name, data: col.data[i:j], valid: col.valid.slice(i, j)}
	case *FloatColumn:
		return &FloatColumn{name: col.name, data: col.data[i:j], valid: col.valid.slice(i, j)}
	case *StringColumn:
		return &StringColumn{name: col.name, data: col.data[i:j], valid: col.valid.slice(i, j)}
	default:
		return c
	}
}

func (v validity) slice(i, j int) validity {
	if v == nil {
		return nil
	}
	return v[i:j]
}

// renamed returns a shallow copy of c carrying a new name. Backing arrays are
// shared, which is safe because columns are never mutated.
func renamed(c Column, name string) Column {
	switch col := c.(type) {
	case *BoolColumn:
		cp := *col
		cp.name = name
		return &cp
	case *IntColumn:
		cp := *col
		cp.name = name
		return &cp
	case *FloatColumn:
		cp := *col
		cp.name = name
		return &cp
	case *StringColumn:
		cp := *col
		cp.name = name
		return &cp
	default:
		return c
	}
}
