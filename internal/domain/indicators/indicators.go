// Package indicators implements the technical indicators used for
// per-symbol feature extraction.
package indicators

import "math"

// SMA returns the simple moving average; positions before a full window are
// NaN.
func SMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || window > len(values) {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RSI returns the relative strength index with Wilder smoothing
// (exponential average with alpha = 1/window). Positions before a full
// window are NaN.
func RSI(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || len(values) <= window {
		return out
	}

	var gainSum, lossSum float64
	for i := 1; i <= window; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}
	avgGain := gainSum / float64(window)
	avgLoss := lossSum / float64(window)
	out[window] = rsiValue(avgGain, avgLoss)

	for i := window + 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MeanIgnoringNaN averages the defined entries of an indicator series.
func MeanIgnoringNaN(values []float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
