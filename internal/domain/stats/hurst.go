package stats

import "math"

// DefaultHurstLags is the lag set used by the pair selection screens.
var DefaultHurstLags = []int{20, 50, 100, 200}

// HurstExponent estimates the Hurst exponent of a series at each lag from
// the variance of lagged differences: H(lag) = log10(var(x_t - x_{t-lag})) /
// log10(lag) / 2. Values below 0.5 indicate mean reversion. Lags that do not
// fit in the sample are skipped.
func HurstExponent(series []float64, lags []int) map[int]float64 {
	out := make(map[int]float64, len(lags))
	for _, lag := range lags {
		if lag <= 1 || lag >= len(series) {
			continue
		}
		v := Variance(Diff(series, lag))
		if v <= 0 || math.IsNaN(v) {
			continue
		}
		out[lag] = math.Log10(v) / math.Log10(float64(lag)) / 2
	}
	return out
}

// AverageHurst averages the per-lag estimates; NaN when none are available.
func AverageHurst(byLag map[int]float64) float64 {
	if len(byLag) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, h := range byLag {
		sum += h
	}
	return sum / float64(len(byLag))
}
