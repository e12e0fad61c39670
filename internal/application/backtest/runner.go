package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/stats"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

// Runner executes the spread strategy for each selected pair against the
// full cleaned price frame.
type Runner struct {
	cfg Config
}

// NewRunner builds a runner; a zero config is replaced with defaults.
func NewRunner(cfg Config) *Runner {
	if cfg.TradingDaysPerYear <= 0 {
		cfg = DefaultConfig()
	}
	return &Runner{cfg: cfg}
}

// Run backtests every pair and aggregates the summary.
func (r *Runner) Run(ctx context.Context, frame *market.Frame, pairs []*selection.PairStats) (*Summary, error) {
	summary := &Summary{
		Config:    r.cfg,
		StartTime: time.Now().UTC(),
	}

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result := r.backtestPair(frame, pair)
		summary.Pairs = append(summary.Pairs, result)
		if result.SkipReason != "" {
			summary.Skipped++
			log.Debug().Str("pair", result.Leg1+"-"+result.Leg2).
				Str("reason", result.SkipReason).Msg("pair not backtested")
			continue
		}
		summary.Tested++
	}

	r.aggregate(summary)
	summary.EndTime = time.Now().UTC()
	return summary, nil
}

// backtestPair marks the spread z-score against its formation distribution:
// short the spread above +entry, long below -entry, flat inside +-exit.
// Legs are dollar-neutral, so the daily return is half the return spread.
func (r *Runner) backtestPair(frame *market.Frame, pair *selection.PairStats) PairResult {
	result := PairResult{
		Leg1:         pair.Leg1,
		Leg2:         pair.Leg2,
		Method:       pair.Method,
		TradingStart: pair.TradingStart,
		TradingEnd:   pair.TradingEnd,
	}

	col1 := market.ColumnName(pair.Leg1, market.FieldAdjClose)
	col2 := market.ColumnName(pair.Leg2, market.FieldAdjClose)
	if frame.Column(col1) == nil || frame.Column(col2) == nil {
		result.SkipReason = "price series missing"
		return result
	}

	formation := frame.SliceDates(pair.FormationStart, pair.FormationEnd)
	trading := frame.SliceDates(pair.TradingStart, pair.TradingEnd)
	if formation.NumRows() < 2 || trading.NumRows() < 2 {
		result.SkipReason = "window out of range"
		return result
	}

	spreadMean, spreadStd := spreadDistribution(formation.Column(col1), formation.Column(col2))
	if spreadStd == 0 || math.IsNaN(spreadStd) {
		result.SkipReason = "degenerate formation spread"
		return result
	}

	p1 := trading.Column(col1)
	p2 := trading.Column(col2)

	position := 0 // +1 long spread, -1 short spread
	var trades int
	var wins int
	var tradeReturn float64
	daily := make([]float64, 0, len(p1)-1)

	for t := 1; t < len(p1); t++ {
		if math.IsNaN(p1[t]) || math.IsNaN(p2[t]) || math.IsNaN(p1[t-1]) || math.IsNaN(p2[t-1]) {
			daily = append(daily, 0)
			continue
		}

		// Mark yesterday's position to market.
		ret := 0.0
		if position != 0 && p1[t-1] > 0 && p2[t-1] > 0 {
			ret = float64(position) * ((p1[t]/p1[t-1] - 1) - (p2[t]/p2[t-1] - 1)) / 2
		}
		daily = append(daily, ret)
		tradeReturn += ret

		z := (p1[t] - p2[t] - spreadMean) / spreadStd
		switch {
		case position == 0 && z >= r.cfg.EntryZ:
			position = -1
			trades++
			tradeReturn = 0
		case position == 0 && z <= -r.cfg.EntryZ:
			position = 1
			trades++
			tradeReturn = 0
		case position != 0 && math.Abs(z) <= r.cfg.ExitZ:
			if tradeReturn > 0 {
				wins++
			}
			position = 0
		}
	}
	if position != 0 && tradeReturn > 0 {
		wins++ // forced close at window end
	}

	result.Days = len(daily)
	result.Trades = trades
	if trades > 0 {
		result.WinRate = float64(wins) / float64(trades)
	}
	result.DailyReturns = daily
	result.TotalReturn = TotalReturn(daily)
	result.AnnReturn = Annualize(result.TotalReturn, result.Days, r.cfg.TradingDaysPerYear)
	result.Sharpe = Sharpe(daily, r.cfg.TradingDaysPerYear, r.cfg.RiskFreeRate)
	result.Sortino = Sortino(daily, r.cfg.TradingDaysPerYear, r.cfg.RiskFreeRate)
	result.MaxDrawdown = MaxDrawdown(daily)
	return result
}

func spreadDistribution(p1, p2 []float64) (mean, sd float64) {
	spread := make([]float64, 0, len(p1))
	for i := range p1 {
		if math.IsNaN(p1[i]) || math.IsNaN(p2[i]) {
			continue
		}
		spread = append(spread, p1[i]-p2[i])
	}
	if len(spread) < 2 {
		return math.NaN(), math.NaN()
	}
	return stats.Mean(spread), stats.StdDev(spread)
}

func (r *Runner) aggregate(s *Summary) {
	var sharpes, sortinos, returns []float64
	for _, p := range s.Pairs {
		if p.SkipReason != "" {
			continue
		}
		if !math.IsNaN(p.Sharpe) {
			sharpes = append(sharpes, p.Sharpe)
		}
		if !math.IsNaN(p.Sortino) {
			sortinos = append(sortinos, p.Sortino)
		}
		returns = append(returns, p.TotalReturn)
		if p.MaxDrawdown > s.WorstMDD {
			s.WorstMDD = p.MaxDrawdown
		}
	}
	if len(sharpes) > 0 {
		s.MeanSharpe = stats.Mean(sharpes)
	}
	if len(sortinos) > 0 {
		s.MeanSortino = stats.Mean(sortinos)
	}
	if len(returns) > 0 {
		s.MeanReturn = stats.Mean(returns)
	}
}

// String gives a one-line digest for logs.
func (s *Summary) String() string {
	return fmt.Sprintf("tested=%d skipped=%d mean_sharpe=%.2f mean_return=%.4f worst_mdd=%.4f",
		s.Tested, s.Skipped, s.MeanSharpe, s.MeanReturn, s.WorstMDD)
}
