package selection

import (
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/indicators"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/stats"
)

const featureWindow = 14

// Features are descriptive per-symbol measures written alongside the
// selection artifacts for later analysis.
type Features struct {
	Ticker     string  `json:"ticker"`
	MeanReturn float64 `json:"mean_return"`
	StdReturn  float64 `json:"std_return"`
	Skewness   float64 `json:"skewness"`
	Kurtosis   float64 `json:"kurtosis"`
	AvgRSI     float64 `json:"avg_rsi"`
	AvgSMA     float64 `json:"avg_sma"`
}

// ExtractFeatures computes features for every ticker in the price set,
// in ticker order.
func ExtractFeatures(prices *PriceSet) []Features {
	out := make([]Features, 0, len(prices.Tickers))
	for _, t := range prices.Tickers {
		p := prices.Series[t]
		r := stats.PctChange(p)
		out = append(out, Features{
			Ticker:     t,
			MeanReturn: stats.Mean(r),
			StdReturn:  stats.StdDev(r),
			Skewness:   stats.Skewness(r),
			Kurtosis:   stats.Kurtosis(r),
			AvgRSI:     indicators.MeanIgnoringNaN(indicators.RSI(p, featureWindow)),
			AvgSMA:     indicators.MeanIgnoringNaN(indicators.SMA(p, featureWindow)),
		})
	}
	return out
}
