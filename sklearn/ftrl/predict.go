package ftrl

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/ftrl/core/frame"
	"github.com/YuminosukeSato/ftrl/core/parallel"
	"github.com/YuminosukeSato/ftrl/pkg/errors"
	"github.com/YuminosukeSato/ftrl/pkg/log"
)

// Predict returns the probability of the positive class for every row of X
// as an n×1 matrix. Predict(nil) returns (nil, nil).
//
// Column hashes are taken from the names of X, so columns must be named as
// they were at training time.
func (f *FTRL) Predict(X *frame.Frame) (*mat.Dense, error) {
	if X == nil {
		return nil, nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.state.RequireFitted(modelName, "Predict"); err != nil {
		return nil, err
	}
	if f.importance != nil && X.NCols() != len(f.importance) {
		return nil, errors.NewDimensionError("Predict", len(f.importance), X.NCols(), 1)
	}

	nrows := X.NRows()
	if nrows == 0 {
		return &mat.Dense{}, nil
	}

	start := time.Now()
	mapper := newFeatureMapper(X, columnHashes(X), uint64(f.params.D), f.params.Interactions, f.hasher)
	c := newCoefficients(f.params)
	out := make([]float64, nrows)

	parallel.ParallelizeWithThreshold(nrows, f.predictThreshold, func(lo, hi int) {
		buf := mapper.newBuffer()
		for i := lo; i < hi; i++ {
			mapper.mapRow(i, buf)
			out[i] = c.predictRow(f.model, buf)
		}
	})

	if err := errors.CheckNumericalStability("Predict", out, 0); err != nil {
		f.logger.Error("Prediction produced non-finite values", err, log.OperationKey, log.OperationPredict)
		return nil, err
	}

	f.logger.Debug("Prediction finished",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, nrows,
		log.DurationMsKey, time.Since(start).Milliseconds())

	return mat.NewDense(nrows, 1, out), nil
}

// PredictFrame is Predict returning a one-column float64 frame named "target".
func (f *FTRL) PredictFrame(X *frame.Frame) (*frame.Frame, error) {
	pred, err := f.Predict(X)
	if err != nil || pred == nil {
		return nil, err
	}
	if pred.IsEmpty() {
		return frame.MustNew(frame.Floats(TargetColumn)), nil
	}
	return frame.MustNew(frame.Floats(TargetColumn, pred.RawMatrix().Data...)), nil
}
