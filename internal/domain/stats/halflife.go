package stats

import "math"

// HalfLife estimates the mean-reversion half-life of a series in bars from
// an AR(1) fit x_t = c + phi*x_{t-1}. Returns NaN for explosive or
// non-reverting fits (|phi| >= 1 or lambda <= 0).
func HalfLife(series []float64) float64 {
	if len(series) < 3 {
		return math.NaN()
	}

	y := make([]float64, 0, len(series)-1)
	x := make([][]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		y = append(y, series[i])
		x = append(x, []float64{1, series[i-1]})
	}
	fit, err := OLS(y, x)
	if err != nil {
		return math.NaN()
	}

	phi := fit.Params[1]
	if phi >= 1 || phi <= -1 {
		return math.NaN()
	}
	lambda := -math.Log(phi)
	if lambda <= 0 || math.IsNaN(lambda) {
		return math.NaN()
	}
	return math.Ln2 / lambda
}
