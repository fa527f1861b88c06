package ftrl

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// Column names of the model frame.
const (
	ModelZColumn         = "z"
	ModelNColumn         = "n"
	FeatureImportanceCol = "feature_importance"
	TargetColumn         = "target"
)

// Model holds the per-bin FTRL accumulators. Z and N always have the same
// length, equal to the D the model was trained with.
type Model struct {
	Z []float64
	N []float64
}

func newModel(d int) *Model {
	return &Model{Z: make([]float64, d), N: make([]float64, d)}
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	return &Model{
		Z: append([]float64(nil), m.Z...),
		N: append([]float64(nil), m.N...),
	}
}

// Len returns the number of bins.
func (m *Model) Len() int { return len(m.Z) }

// Dense returns the model as a d×2 matrix with columns z and n.
func (m *Model) Dense() *mat.Dense {
	d := m.Len()
	out := mat.NewDense(d, 2, nil)
	out.SetCol(0, m.Z)
	out.SetCol(1, m.N)
	return out
}

// Frame returns the model as a frame with float64 columns z and n.
func (m *Model) Frame() *frame.Frame {
	return frame.MustNew(frame.Floats(ModelZColumn, m.Z...), frame.Floats(ModelNColumn, m.N...))
}

// Validate checks that m fits a learner with d bins.
func (m *Model) Validate(d int) error {
	if len(m.Z) != d || len(m.N) != d {
		return errors.NewIncompatibleModelError(
			"FTRL model must have %d rows for both z and n, whereas it has %d and %d", d, len(m.Z), len(m.N))
	}
	for _, v := range m.N {
		if v < 0 {
			return errors.NewIncompatibleModelError("values in column `n` cannot be negative")
		}
		if math.IsNaN(v) {
			return errors.NewIncompatibleModelError("values in column `n` cannot be missing")
		}
	}
	return nil
}

// modelFromFrame validates a z/n frame and copies it into a Model.
func modelFromFrame(f *frame.Frame, d int) (*Model, error) {
	if f.NRows() != d || f.NCols() != 2 {
		noun := "columns"
		if f.NCols() == 1 {
			noun = "column"
		}
		return nil, errors.NewIncompatibleModelError(
			"FTRL model frame must have %d rows, and 2 columns, whereas your frame has %d rows and %d %s",
			d, f.NRows(), f.NCols(), noun)
	}
	z, zok := f.Col(0).(*frame.FloatColumn)
	n, nok := f.Col(1).(*frame.FloatColumn)
	if !zok || !nok {
		return nil, errors.NewIncompatibleModelError(
			"FTRL model frame must have both column types as `float64`, whereas your frame has the following column types: `%s` and `%s`",
			f.Col(0).Type(), f.Col(1).Type())
	}
	m := &Model{Z: z.Values(), N: n.Values()}
	if err := m.Validate(d); err != nil {
		return nil, err
	}
	return m, nil
}
