// Package pipeline orchestrates the walk-forward research run: window
// partitioning, pair selection per strategy, and persistence of results.
package pipeline

import (
	"fmt"
	"time"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

// ComputeWindows partitions [start, end] into walk-forward windows. Each
// window holds formation_days of history and trades trading_days starting
// right at formation end; the anchor then advances by step_days. The
// validation period is carved from inside the formation range (it never
// shifts the trading range) and the formation tail is embargoed: the last
// embargo_pct of its rows are dropped so statistics never touch
// observations adjacent to the trading range.
func ComputeWindows(frame *market.Frame, wc config.WindowsConfig, start, end time.Time) ([]selection.Window, error) {
	if frame.NumRows() == 0 {
		return nil, fmt.Errorf("windows: empty frame")
	}

	var windows []selection.Window
	for anchor := start; ; anchor = anchor.AddDate(0, 0, wc.StepDays) {
		formEnd := anchor.AddDate(0, 0, wc.FormationDays)
		tradEnd := formEnd.AddDate(0, 0, wc.TradingDays)
		if tradEnd.After(end) {
			break
		}

		w := selection.Window{
			FormationStart: anchor,
			FormationEnd:   formEnd,
			TradingStart:   formEnd,
			TradingEnd:     tradEnd,
		}
		// Half-life bound uses the calendar span of the trading range.
		w.TradingDays = int(w.TradingEnd.Sub(w.TradingStart).Hours() / 24)

		formation := frame.SliceDates(w.FormationStart, w.FormationEnd)
		if embargo := embargoRows(formation.NumRows(), wc.EmbargoPct); embargo > 0 {
			w.FormationEnd = formation.Dates[formation.NumRows()-1-embargo]
		}

		trading := frame.SliceDates(w.TradingStart, w.TradingEnd)
		if frame.SliceDates(w.FormationStart, w.FormationEnd).NumRows() == 0 || trading.NumRows() == 0 {
			continue
		}
		windows = append(windows, w)
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("windows: range %s..%s too short for formation=%dd validation=%dd trading=%dd",
			start.Format("2006-01-02"), end.Format("2006-01-02"),
			wc.FormationDays, wc.ValidationDays, wc.TradingDays)
	}
	return windows, nil
}

func embargoRows(formationRows int, pct float64) int {
	if pct <= 0 || formationRows == 0 {
		return 0
	}
	n := int(pct * float64(formationRows))
	if n >= formationRows {
		n = formationRows - 1
	}
	return n
}
