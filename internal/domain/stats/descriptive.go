package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PctChange returns simple one-period returns; output length is len(p)-1.
func PctChange(p []float64) []float64 {
	if len(p) < 2 {
		return nil
	}
	r := make([]float64, 0, len(p)-1)
	for i := 1; i < len(p); i++ {
		if p[i-1] == 0 {
			r = append(r, math.NaN())
			continue
		}
		r = append(r, p[i]/p[i-1]-1)
	}
	return r
}

// Correlation is the Pearson correlation of two equal-length samples.
func Correlation(a, b []float64) float64 {
	n := len(a)
	if n == 0 || len(b) != n {
		return math.NaN()
	}
	return stat.Correlation(a, b, nil)
}

// Mean and StdDev are thin wrappers so callers stay off gonum directly.
func Mean(x []float64) float64 { return stat.Mean(x, nil) }

func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

func Skewness(x []float64) float64 { return stat.Skew(x, nil) }

// Kurtosis returns excess kurtosis (0 for a normal sample).
func Kurtosis(x []float64) float64 { return stat.ExKurtosis(x, nil) }

// IsConstant reports whether the series has at most one distinct value.
// Constant series break the unit-root machinery and are rejected upstream.
func IsConstant(x []float64) bool {
	if len(x) == 0 {
		return true
	}
	first := x[0]
	for _, v := range x[1:] {
		if v != first {
			return false
		}
	}
	return true
}

// Diff returns the lag-k difference series x[t] - x[t-k].
func Diff(x []float64, k int) []float64 {
	if k <= 0 || k >= len(x) {
		return nil
	}
	d := make([]float64, len(x)-k)
	for i := k; i < len(x); i++ {
		d[i-k] = x[i] - x[i-k]
	}
	return d
}

// Variance is the population variance, matching the estimator the spread
// Hurst calculation expects.
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	m := stat.Mean(x, nil)
	var sum float64
	for _, v := range x {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(x))
}
