// Package selection implements formation-window pair screening: pair
// statistics, acceptance criteria, and the three candidate-generation
// strategies.
package selection

import (
	"errors"
	"sort"
	"time"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

// Strategy method labels, kept stable for artifacts and persistence.
const (
	MethodNoClustering = "No Clustering"
	MethodTheme        = "Clustering by Segment"
	MethodOptics       = "Clustering using OPTICS"
)

// Skip reasons from pair statistics.
var (
	ErrInsufficientData = errors.New("insufficient overlapping observations")
	ErrConstantSeries   = errors.New("constant price series")
	ErrStationaryLeg    = errors.New("leg already stationary")
)

// Window is one walk-forward partition: statistics are computed on the
// formation range, trading happens on the trading range.
type Window struct {
	FormationStart time.Time
	FormationEnd   time.Time
	TradingStart   time.Time
	TradingEnd     time.Time
	TradingDays    int
}

// PairStats carries the formation-window statistics for one candidate pair.
type PairStats struct {
	Leg1         string          `json:"leg1"`
	Leg2         string          `json:"leg2"`
	Method       string          `json:"method"`
	Cluster      int             `json:"cluster"`           // -1 unless the OPTICS strategy set it
	Segment      string          `json:"segment,omitempty"` // set by the theme strategy
	Correlation  float64         `json:"correlation"`
	CointTStat   float64         `json:"coint_tstat"`
	CointPValue  float64         `json:"coint_pvalue"`
	HurstByLag   map[int]float64 `json:"hurst_by_lag,omitempty"`
	AverageHurst float64         `json:"average_hurst"`
	HalfLife     float64         `json:"half_life"`
	SpreadStd    float64         `json:"spread_std"`

	FormationStart time.Time `json:"formation_start"`
	FormationEnd   time.Time `json:"formation_end"`
	TradingStart   time.Time `json:"trading_start"`
	TradingEnd     time.Time `json:"trading_end"`
}

// PriceSet is the aligned adjusted-close view a strategy screens over.
type PriceSet struct {
	Tickers []string
	Series  map[string][]float64
}

// ExtractAdjClose pulls the *_adj_close columns out of a frame into a
// ticker-keyed price set, tickers sorted.
func ExtractAdjClose(frame *market.Frame) *PriceSet {
	cols := frame.ColumnsWithSuffix(market.FieldAdjClose)
	set := &PriceSet{Series: make(map[string][]float64, len(cols))}
	for _, c := range cols {
		ticker := market.TickerOf(c)
		set.Tickers = append(set.Tickers, ticker)
		set.Series[ticker] = frame.Column(c)
	}
	sort.Strings(set.Tickers)
	return set
}

// Pairs enumerates all unordered ticker pairs, preserving input order.
func Pairs(tickers []string) [][2]string {
	var out [][2]string
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			out = append(out, [2]string{tickers[i], tickers[j]})
		}
	}
	return out
}

// Stamp fills the window metadata onto a batch of stats.
func Stamp(stats []*PairStats, method string, w Window) {
	for _, s := range stats {
		s.Method = method
		s.FormationStart = w.FormationStart
		s.FormationEnd = w.FormationEnd
		s.TradingStart = w.TradingStart
		s.TradingEnd = w.TradingEnd
	}
}
