package pipeline

import (
	"testing"
	"time"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

func dailyFrame(start time.Time, days int) *market.Frame {
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	f := market.NewFrame(dates)
	prices := make([]float64, days)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	f.AddColumn("AAA_adj_close", prices)
	return f
}

func testWindows() config.WindowsConfig {
	return config.WindowsConfig{
		FormationDays:  100,
		ValidationDays: 10,
		TradingDays:    50,
		StepDays:       50,
		EmbargoPct:     0,
	}
}

func TestComputeWindowsWalkForward(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 399)
	frame := dailyFrame(start, 400)

	windows, err := ComputeWindows(frame, testWindows(), start, end)
	if err != nil {
		t.Fatalf("ComputeWindows failed: %v", err)
	}
	if len(windows) < 2 {
		t.Fatalf("got %d windows, want at least 2", len(windows))
	}

	for i, w := range windows {
		if !w.FormationEnd.After(w.FormationStart) {
			t.Errorf("window %d: formation end not after start", i)
		}
		// Trading begins right at formation end; the validation period is
		// carved from inside formation, not inserted as a gap.
		if !w.TradingStart.Equal(w.FormationEnd) {
			t.Errorf("window %d: trading start %v, want formation end %v", i, w.TradingStart, w.FormationEnd)
		}
		if w.TradingEnd.After(end) {
			t.Errorf("window %d: trading end %v past range end", i, w.TradingEnd)
		}
		if w.TradingDays != 50 {
			t.Errorf("window %d: trading days = %d, want calendar span 50", i, w.TradingDays)
		}
	}

	// Anchors advance by the step.
	step := windows[1].FormationStart.Sub(windows[0].FormationStart)
	if step != 50*24*time.Hour {
		t.Errorf("anchor step = %v, want 50 days", step)
	}

	// No embargo: formation spans the full lookback.
	if got := windows[0].FormationEnd; !got.Equal(start.AddDate(0, 0, 100)) {
		t.Errorf("formation end = %v, want anchor+100d", got)
	}
}

func TestComputeWindowsValidationDoesNotShiftTrading(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 399)
	frame := dailyFrame(start, 400)

	base := testWindows()
	base.ValidationDays = 0
	long := testWindows()
	long.ValidationDays = 90

	a, err := ComputeWindows(frame, base, start, end)
	if err != nil {
		t.Fatalf("ComputeWindows failed: %v", err)
	}
	b, err := ComputeWindows(frame, long, start, end)
	if err != nil {
		t.Fatalf("ComputeWindows failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("window counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].TradingStart.Equal(b[i].TradingStart) || !a[i].TradingEnd.Equal(b[i].TradingEnd) {
			t.Errorf("window %d: validation days moved the trading range", i)
		}
	}
	if want := start.AddDate(0, 0, 100); !b[0].TradingStart.Equal(want) {
		t.Errorf("trading start = %v, want %v", b[0].TradingStart, want)
	}
}

func TestComputeWindowsEmbargoTrimsFormation(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 399)
	frame := dailyFrame(start, 400)

	wc := testWindows()
	wc.EmbargoPct = 0.05
	windows, err := ComputeWindows(frame, wc, start, end)
	if err != nil {
		t.Fatalf("ComputeWindows failed: %v", err)
	}

	full := start.AddDate(0, 0, 100)
	w := windows[0]
	if !w.FormationEnd.Before(full) {
		t.Errorf("embargoed formation end = %v, want before %v", w.FormationEnd, full)
	}
	// 5% of 101 formation rows -> 5 rows trimmed off the tail.
	if want := start.AddDate(0, 0, 95); !w.FormationEnd.Equal(want) {
		t.Errorf("formation end = %v, want %v", w.FormationEnd, want)
	}
	// The trading range itself is untouched.
	if !w.TradingStart.Equal(full) {
		t.Errorf("trading start = %v moved by embargo", w.TradingStart)
	}
}

func TestComputeWindowsRangeTooShort(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	frame := dailyFrame(start, 50)

	if _, err := ComputeWindows(frame, testWindows(), start, start.AddDate(0, 0, 49)); err == nil {
		t.Error("expected error for range shorter than one window")
	}
}

func TestComputeWindowsEmptyFrame(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	frame := market.NewFrame(nil)
	if _, err := ComputeWindows(frame, testWindows(), start, start.AddDate(0, 1, 0)); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestEmbargoRows(t *testing.T) {
	if got := embargoRows(100, 0.01); got != 1 {
		t.Errorf("embargoRows(100, 0.01) = %d, want 1", got)
	}
	if got := embargoRows(100, 0); got != 0 {
		t.Errorf("zero pct should embargo nothing, got %d", got)
	}
	if got := embargoRows(3, 0.99); got != 2 {
		t.Errorf("embargo must leave at least one row, got %d", got)
	}
}
