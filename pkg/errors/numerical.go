package errors

import (
	"math"
)

// logFloor is the smallest argument StabilizeLog passes to math.Log.
const logFloor = 1e-15

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// CheckNumericalStability returns a NumericalInstabilityError when any of
// values is NaN or ±Inf. Prediction runs it over the probability column.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if !finite(v) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar is CheckNumericalStability for one value, such as the mean
// log loss of a training epoch.
func CheckScalar(operation string, value float64, iteration int) error {
	if finite(value) {
		return nil
	}
	return NewNumericalInstabilityError(operation, []float64{value}, iteration)
}

// ClipValue returns value limited to [lo, hi]. The logistic function uses it
// to keep exp away from overflow.
func ClipValue(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// StabilizeLog returns log(value) with value floored at 1e-15, so a
// probability of exactly 0 yields a large finite loss instead of -Inf.
func StabilizeLog(value float64) float64 {
	return math.Log(math.Max(value, logFloor))
}
