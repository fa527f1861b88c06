// Package frame provides a small columnar table of typed, immutable columns.
//
// A Frame is the unit of exchange with the learner: training features, the
// target, predictions, model weights and feature importances all travel as
// frames. Columns may contain missing values.
package frame

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// Frame is an ordered set of equally long columns.
type Frame struct {
	cols  []Column
	nrows int
}

// New assembles columns into a frame. Every column must have the same length.
// Unnamed columns are given the default names C0, C1, ... by position.
func New(cols ...Column) (*Frame, error) {
	f := &Frame{cols: make([]Column, len(cols))}
	for j, c := range cols {
		if c == nil {
			return nil, errors.NewValueError("frame.New", fmt.Sprintf("column %d is nil", j))
		}
		if j == 0 {
			f.nrows = c.Len()
		} else if c.Len() != f.nrows {
			return nil, errors.NewDimensionError("frame.New", f.nrows, c.Len(), 0)
		}
		if c.Name() == "" {
			c = renamed(c, DefaultName(j))
		}
		f.cols[j] = c
	}
	return f, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(cols ...Column) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// DefaultName is the name given to the unnamed column at position j.
func DefaultName(j int) string {
	return fmt.Sprintf("C%d", j)
}

// NCols returns the number of columns.
func (f *Frame) NCols() int { return len(f.cols) }

// NRows returns the number of rows.
func (f *Frame) NRows() int { return f.nrows }

// Col returns the j-th column.
func (f *Frame) Col(j int) Column { return f.cols[j] }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for j, c := range f.cols {
		names[j] = c.Name()
	}
	return names
}

// Types returns the column types in order.
func (f *Frame) Types() []Type {
	types := make([]Type, len(f.cols))
	for j, c := range f.cols {
		types[j] = c.Type()
	}
	return types
}

// Lookup returns the column with the given name.
func (f *Frame) Lookup(name string) (Column, bool) {
	for _, c := range f.cols {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Select returns a frame made of the columns at the given positions.
func (f *Frame) Select(idx ...int) (*Frame, error) {
	cols := make([]Column, len(idx))
	for k, j := range idx {
		if j < 0 || j >= len(f.cols) {
			return nil, errors.NewValueError("frame.Select", fmt.Sprintf("column index %d out of range [0, %d)", j, len(f.cols)))
		}
		cols[k] = f.cols[j]
	}
	out := &Frame{cols: cols, nrows: f.nrows}
	if len(cols) == 0 {
		out.nrows = 0
	}
	return out, nil
}

// Drop returns a frame without the named column.
func (f *Frame) Drop(name string) *Frame {
	cols := make([]Column, 0, len(f.cols))
	for _, c := range f.cols {
		if c.Name() != name {
			cols = append(cols, c)
		}
	}
	out := &Frame{cols: cols, nrows: f.nrows}
	if len(cols) == 0 {
		out.nrows = 0
	}
	return out
}

// Slice returns rows [i, j) as a new frame sharing storage with f.
func (f *Frame) Slice(i, j int) *Frame {
	if i < 0 {
		i = 0
	}
	if j > f.nrows {
		j = f.nrows
	}
	if i > j {
		i = j
	}
	cols := make([]Column, len(f.cols))
	for k, c := range f.cols {
		cols[k] = slice(c, i, j)
	}
	return &Frame{cols: cols, nrows: j - i}
}

// FromDense converts a matrix into a frame of float64 columns. names may be
// nil, in which case default names are used.
func FromDense(m mat.Matrix, names []string) (*Frame, error) {
	r, c := m.Dims()
	if names != nil && len(names) != c {
		return nil, errors.NewDimensionError("frame.FromDense", c, len(names), 1)
	}
	cols := make([]Column, c)
	for j := 0; j < c; j++ {
		data := make([]float64, r)
		for i := 0; i < r; i++ {
			data[i] = m.At(i, j)
		}
		name := DefaultName(j)
		if names != nil {
			name = names[j]
		}
		cols[j] = &FloatColumn{name: name, data: data}
	}
	return New(cols...)
}

// Dense converts a frame of bool, int and float columns into a matrix.
// Missing values become NaN. String columns cannot be converted.
func (f *Frame) Dense() (*mat.Dense, error) {
	if f.nrows == 0 || len(f.cols) == 0 {
		return nil, errors.ErrEmptyData
	}
	out := mat.NewDense(f.nrows, len(f.cols), nil)
	for j, c := range f.cols {
		for i := 0; i < f.nrows; i++ {
			if c.IsNA(i) {
				out.Set(i, j, math.NaN())
				continue
			}
			switch col := c.(type) {
			case *BoolColumn:
				if col.Value(i) {
					out.Set(i, j, 1)
				}
			case *IntColumn:
				out.Set(i, j, float64(col.Value(i)))
			case *FloatColumn:
				out.Set(i, j, col.Value(i))
			default:
				return nil, errors.NewValueError("frame.Dense",
					fmt.Sprintf("column %q of type %s cannot be converted to float64", c.Name(), c.Type()))
			}
		}
	}
	return out, nil
}
