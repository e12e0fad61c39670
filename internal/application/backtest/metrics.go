package backtest

import (
	"math"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/stats"
)

// Sharpe is the annualized Sharpe ratio of a daily return series against an
// annualized risk-free rate. NaN when the series has no dispersion.
func Sharpe(daily []float64, daysPerYear int, riskFree float64) float64 {
	if len(daily) < 2 {
		return math.NaN()
	}
	rfDaily := riskFree / float64(daysPerYear)
	excess := make([]float64, len(daily))
	for i, r := range daily {
		excess[i] = r - rfDaily
	}
	sd := stats.StdDev(excess)
	if sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}
	return stats.Mean(excess) / sd * math.Sqrt(float64(daysPerYear))
}

// Sortino is the annualized Sortino ratio: mean excess return over downside
// deviation. NaN when there are no down days.
func Sortino(daily []float64, daysPerYear int, riskFree float64) float64 {
	if len(daily) < 2 {
		return math.NaN()
	}
	rfDaily := riskFree / float64(daysPerYear)
	var mean, downSq float64
	var downs int
	for _, r := range daily {
		ex := r - rfDaily
		mean += ex
		if ex < 0 {
			downSq += ex * ex
			downs++
		}
	}
	mean /= float64(len(daily))
	if downs == 0 {
		return math.NaN()
	}
	downside := math.Sqrt(downSq / float64(len(daily)))
	if downside == 0 {
		return math.NaN()
	}
	return mean / downside * math.Sqrt(float64(daysPerYear))
}

// MaxDrawdown is the largest peak-to-trough loss of the compounded equity
// curve, returned as a positive fraction.
func MaxDrawdown(daily []float64) float64 {
	equity := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range daily {
		equity *= 1 + r
		if equity > peak {
			peak = equity
		}
		if dd := (peak - equity) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// TotalReturn compounds a daily return series.
func TotalReturn(daily []float64) float64 {
	equity := 1.0
	for _, r := range daily {
		equity *= 1 + r
	}
	return equity - 1
}

// Annualize converts a total return over n days to an annual rate.
func Annualize(total float64, days, daysPerYear int) float64 {
	if days <= 0 || total <= -1 {
		return math.NaN()
	}
	return math.Pow(1+total, float64(daysPerYear)/float64(days)) - 1
}
