package training

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Metrics struct {
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// Evaluate scores predictions against actual fares. R2 is 0 when the
// actual values have no variance.
func Evaluate(pred, actual []float64) Metrics {
	if len(pred) == 0 || len(pred) != len(actual) {
		return Metrics{}
	}
	n := float64(len(pred))
	diff := floats.SubTo(make([]float64, len(pred)), pred, actual)
	l2 := floats.Norm(diff, 2)
	r2 := stat.RSquaredFrom(pred, actual, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return Metrics{
		MAE: floats.Norm(diff, 1) / n,
		MSE: l2 * l2 / n,
		R2:  r2,
	}
}
