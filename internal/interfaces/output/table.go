// Package output renders pipeline results as console tables.
package output

import (
	"fmt"
	"io"
	"math"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/backtest"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
)

// PrintPairsTable writes selected pairs as an aligned table.
func PrintPairsTable(w io.Writer, pairs []*selection.PairStats) {
	fmt.Fprintf(w, "%-14s %-26s %-8s %8s %8s %8s %8s %10s\n",
		"PAIR", "METHOD", "COHORT", "CORR", "T-STAT", "P-VALUE", "HURST", "HALF-LIFE")
	for _, p := range pairs {
		fmt.Fprintf(w, "%-14s %-26s %-8s %8.3f %8.3f %8.4f %8.3f %10.1f\n",
			p.Leg1+"-"+p.Leg2, p.Method, cohortLabel(p),
			p.Correlation, p.CointTStat, p.CointPValue, p.AverageHurst, p.HalfLife)
	}
	fmt.Fprintf(w, "\n%d pairs\n", len(pairs))
}

// PrintBacktestTable writes per-pair backtest outcomes as an aligned table.
func PrintBacktestTable(w io.Writer, summary *backtest.Summary) {
	fmt.Fprintf(w, "%-14s %-26s %7s %8s %9s %8s %8s %8s\n",
		"PAIR", "METHOD", "TRADES", "WIN", "RETURN", "SHARPE", "SORTINO", "MAX-DD")
	for _, p := range summary.Pairs {
		if p.SkipReason != "" {
			fmt.Fprintf(w, "%-14s %-26s skipped: %s\n", p.Leg1+"-"+p.Leg2, p.Method, p.SkipReason)
			continue
		}
		fmt.Fprintf(w, "%-14s %-26s %7d %7.1f%% %8.2f%% %8s %8s %7.2f%%\n",
			p.Leg1+"-"+p.Leg2, p.Method, p.Trades, p.WinRate*100,
			p.TotalReturn*100, ratio(p.Sharpe), ratio(p.Sortino), p.MaxDrawdown*100)
	}
	fmt.Fprintf(w, "\ntested=%d skipped=%d mean_sharpe=%.2f mean_return=%.2f%% worst_mdd=%.2f%%\n",
		summary.Tested, summary.Skipped, summary.MeanSharpe,
		summary.MeanReturn*100, summary.WorstMDD*100)
}

func cohortLabel(p *selection.PairStats) string {
	switch {
	case p.Segment != "":
		return p.Segment
	case p.Cluster >= 0:
		return fmt.Sprintf("c%d", p.Cluster)
	default:
		return "-"
	}
}

func ratio(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
