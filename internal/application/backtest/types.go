// Package backtest simulates a z-score mean-reversion strategy on selected
// pairs over their trading windows and reports risk-adjusted metrics.
package backtest

import (
	"encoding/json"
	"math"
	"time"
)

// Config holds the strategy and accounting parameters.
type Config struct {
	EntryZ             float64 `json:"entry_z"`
	ExitZ              float64 `json:"exit_z"`
	TradingDaysPerYear int     `json:"trading_days_per_year"`
	RiskFreeRate       float64 `json:"risk_free_rate"` // annualized
}

// DefaultConfig mirrors the documented research setup.
func DefaultConfig() Config {
	return Config{
		EntryZ:             2.0,
		ExitZ:              0.5,
		TradingDaysPerYear: 252,
	}
}

// PairResult is the outcome for one pair over one trading window.
type PairResult struct {
	Leg1           string    `json:"leg1"`
	Leg2           string    `json:"leg2"`
	Method         string    `json:"method"`
	TradingStart   time.Time `json:"trading_start"`
	TradingEnd     time.Time `json:"trading_end"`
	Days           int       `json:"days"`
	Trades         int       `json:"trades"`
	WinRate        float64   `json:"win_rate"`
	TotalReturn    float64   `json:"total_return"`
	AnnReturn      float64   `json:"ann_return"`
	Sharpe         float64   `json:"sharpe"`
	Sortino        float64   `json:"sortino"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	DailyReturns   []float64 `json:"-"`
	SkipReason     string    `json:"skip_reason,omitempty"`
}

// MarshalJSON encodes NaN ratios as null; pairs with no dispersion or no
// down days would otherwise make the whole result unencodable.
func (p PairResult) MarshalJSON() ([]byte, error) {
	type pairResultAlias PairResult
	aux := struct {
		pairResultAlias
		AnnReturn *float64 `json:"ann_return"`
		Sharpe    *float64 `json:"sharpe"`
		Sortino   *float64 `json:"sortino"`
	}{pairResultAlias: pairResultAlias(p)}
	aux.AnnReturn = finiteOrNull(p.AnnReturn)
	aux.Sharpe = finiteOrNull(p.Sharpe)
	aux.Sortino = finiteOrNull(p.Sortino)
	return json.Marshal(aux)
}

func finiteOrNull(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Summary aggregates a whole backtest run.
type Summary struct {
	Config      Config       `json:"config"`
	StartTime   time.Time    `json:"start_time"`
	EndTime     time.Time    `json:"end_time"`
	Pairs       []PairResult `json:"pairs"`
	Tested      int          `json:"tested"`
	Skipped     int          `json:"skipped"`
	MeanSharpe  float64      `json:"mean_sharpe"`
	MeanSortino float64      `json:"mean_sortino"`
	MeanReturn  float64      `json:"mean_return"`
	WorstMDD    float64      `json:"worst_mdd"`
}
