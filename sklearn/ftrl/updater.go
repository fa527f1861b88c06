package ftrl

import (
	"math"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// maxLogit bounds the logistic input so exp never overflows.
const maxLogit = 35.0

// coefficients caches the per-fit constants of the weight formula.
type coefficients struct {
	alpha   float64
	beta    float64
	lambda1 float64
	lambda2 float64
}

func newCoefficients(p Params) coefficients {
	return coefficients{alpha: p.Alpha, beta: p.Beta, lambda1: p.Lambda1, lambda2: p.Lambda2}
}

// weight is the FTRL-proximal closed form for one bin.
func (c coefficients) weight(z, n float64) float64 {
	absZ := math.Abs(z)
	if absZ <= c.lambda1 {
		return 0
	}
	sign := 1.0
	if z < 0 {
		sign = -1
	}
	return -(z - sign*c.lambda1) / ((c.beta+math.Sqrt(n))/c.alpha + c.lambda2)
}

func sigmoid(x float64) float64 {
	x = errors.ClipValue(x, -maxLogit, maxLogit)
	return 1 / (1 + math.Exp(-x))
}

// predictRow computes the weights of every index in buf and returns the
// probability of the positive class. Repeated indices contribute once per
// occurrence.
func (c coefficients) predictRow(m *Model, buf *rowBuffer) float64 {
	var score float64
	for k, i := range buf.index {
		w := c.weight(m.Z[i], m.N[i])
		buf.weight[k] = w
		score += w
	}
	return sigmoid(score)
}

// updater applies one training row at a time to a model and its
// feature importance accumulator.
type updater struct {
	coefficients
	model      *Model
	importance []float64
	owner      []int
}

// step trains on one row whose indices are already in buf and returns the
// prediction made before the update.
func (u *updater) step(buf *rowBuffer, y bool) float64 {
	p := u.predictRow(u.model, buf)
	g := p
	if y {
		g = p - 1
	}
	g2 := g * g

	z, n := u.model.Z, u.model.N
	for k, i := range buf.index {
		w := buf.weight[k]
		sigma := (math.Sqrt(n[i]+g2) - math.Sqrt(n[i])) / u.alpha
		z[i] += g - sigma*w
		n[i] += g2
		u.importance[u.owner[k]] += math.Abs(w)
	}
	return p
}

// logLoss is the binary cross-entropy of one prediction.
func logLoss(p float64, y bool) float64 {
	if y {
		return -errors.StabilizeLog(p)
	}
	return -errors.StabilizeLog(1 - p)
}
