package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

// revertingFrame builds a panel where AAA-BBB holds a spread of 10 in the
// formation range, spikes in the trading range, and reverts to the mean.
func revertingFrame(t *testing.T) *market.Frame {
	t.Helper()
	dates := make([]time.Time, 15)
	for i := range dates {
		dates[i] = day(i + 1)
	}
	f := market.NewFrame(dates)

	aaa := []float64{99, 101, 99, 101, 99, 101, 99, 101, 99, 101, // formation
		100, 113, 110, 100, 100} // trading: spike then revert
	bbb := make([]float64, 15)
	for i := range bbb {
		bbb[i] = 90
	}
	f.AddColumn("AAA_adj_close", aaa)
	f.AddColumn("BBB_adj_close", bbb)
	return f
}

func testPair() *selection.PairStats {
	return &selection.PairStats{
		Leg1:           "AAA",
		Leg2:           "BBB",
		Method:         "nocluster",
		FormationStart: day(1),
		FormationEnd:   day(10),
		TradingStart:   day(11),
		TradingEnd:     day(15),
	}
}

func TestRunnerMeanReversionTrade(t *testing.T) {
	runner := NewRunner(DefaultConfig())
	summary, err := runner.Run(context.Background(), revertingFrame(t), []*selection.PairStats{testPair()})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Tested != 1 || summary.Skipped != 0 {
		t.Fatalf("tested=%d skipped=%d, want 1/0", summary.Tested, summary.Skipped)
	}

	res := summary.Pairs[0]
	if res.SkipReason != "" {
		t.Fatalf("unexpected skip: %s", res.SkipReason)
	}
	if res.Trades != 1 {
		t.Errorf("trades = %d, want 1 (spike then revert)", res.Trades)
	}
	if res.WinRate != 1 {
		t.Errorf("win rate = %v, want 1 (short rode the spread back down)", res.WinRate)
	}
	if res.TotalReturn <= 0 {
		t.Errorf("total return = %v, want positive", res.TotalReturn)
	}
	if res.Days != 4 {
		t.Errorf("days = %d, want 4", res.Days)
	}
	if res.MaxDrawdown != 0 {
		t.Errorf("max drawdown = %v, want 0 for a winning short", res.MaxDrawdown)
	}

	// Aggregates follow the single tested pair.
	if summary.MeanReturn != res.TotalReturn {
		t.Errorf("mean return = %v, want %v", summary.MeanReturn, res.TotalReturn)
	}
}

func TestRunnerSkipMissingSeries(t *testing.T) {
	pair := testPair()
	pair.Leg2 = "ZZZ"

	runner := NewRunner(DefaultConfig())
	summary, err := runner.Run(context.Background(), revertingFrame(t), []*selection.PairStats{pair})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", summary.Skipped)
	}
	if summary.Pairs[0].SkipReason != "price series missing" {
		t.Errorf("skip reason = %q", summary.Pairs[0].SkipReason)
	}
}

func TestRunnerSkipDegenerateSpread(t *testing.T) {
	dates := []time.Time{day(1), day(2), day(3), day(4)}
	f := market.NewFrame(dates)
	f.AddColumn("AAA_adj_close", []float64{100, 100, 100, 100})
	f.AddColumn("BBB_adj_close", []float64{90, 90, 90, 90})

	pair := testPair()
	pair.FormationEnd = day(2)
	pair.TradingStart = day(3)
	pair.TradingEnd = day(4)

	runner := NewRunner(DefaultConfig())
	summary, err := runner.Run(context.Background(), f, []*selection.PairStats{pair})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Pairs[0].SkipReason != "degenerate formation spread" {
		t.Errorf("skip reason = %q", summary.Pairs[0].SkipReason)
	}
}

func TestRunnerSkipWindowOutOfRange(t *testing.T) {
	pair := testPair()
	pair.TradingStart = day(20)
	pair.TradingEnd = day(25)

	runner := NewRunner(DefaultConfig())
	summary, err := runner.Run(context.Background(), revertingFrame(t), []*selection.PairStats{pair})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Pairs[0].SkipReason != "window out of range" {
		t.Errorf("skip reason = %q", summary.Pairs[0].SkipReason)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(DefaultConfig())
	if _, err := runner.Run(ctx, revertingFrame(t), []*selection.PairStats{testPair()}); err == nil {
		t.Error("expected context error")
	}
}

func TestNewRunnerZeroConfig(t *testing.T) {
	runner := NewRunner(Config{})
	if runner.cfg.TradingDaysPerYear != 252 || runner.cfg.EntryZ != 2.0 {
		t.Errorf("zero config not defaulted: %+v", runner.cfg)
	}
}
