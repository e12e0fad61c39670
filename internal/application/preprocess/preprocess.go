// Package preprocess cleans a raw wide OHLCV frame into the adjusted-close
// panel the selection pipeline consumes.
package preprocess

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/stats"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

// Report summarizes what cleaning changed.
type Report struct {
	DuplicateDatesRemoved int      `json:"duplicate_dates_removed"`
	MissingCellsFilled    int      `json:"missing_cells_filled"`
	RemovedMissing        []string `json:"removed_missing"`
	RemovedConstant       []string `json:"removed_constant"`
	SymbolsKept           int      `json:"symbols_kept"`
}

// Clean validates and repairs the raw frame, then extracts the adjusted
// close columns: duplicate dates dropped (first kept), gaps forward- then
// back-filled, symbols with residual missing or constant data removed.
func Clean(raw *market.Frame) (*market.Frame, *Report, error) {
	report := &Report{}

	report.DuplicateDatesRemoved = raw.DedupeDates()
	if report.DuplicateDatesRemoved > 0 {
		log.Warn().Int("rows", report.DuplicateDatesRemoved).Msg("removed duplicate dates")
	}

	if missing := raw.TotalMissing(); missing > 0 {
		log.Warn().Int("cells", missing).Msg("filling missing values")
		raw.ForwardFill()
		raw.BackFill()
		report.MissingCellsFilled = missing - raw.TotalMissing()
	}

	adjCols := raw.ColumnsWithSuffix(market.FieldAdjClose)
	if len(adjCols) == 0 {
		return nil, nil, fmt.Errorf("preprocess: no %s columns in frame", market.FieldAdjClose)
	}
	adj := raw.Select(adjCols...)

	for _, c := range adj.Columns() {
		if adj.MissingCount(c) > 0 {
			report.RemovedMissing = append(report.RemovedMissing, market.TickerOf(c))
			adj.DropColumns(c)
		}
	}
	for _, c := range adj.Columns() {
		if stats.IsConstant(adj.Column(c)) {
			report.RemovedConstant = append(report.RemovedConstant, market.TickerOf(c))
			adj.DropColumns(c)
		}
	}
	if len(report.RemovedMissing) > 0 {
		log.Warn().Strs("tickers", report.RemovedMissing).Msg("removed symbols with missing data")
	}
	if len(report.RemovedConstant) > 0 {
		log.Warn().Strs("tickers", report.RemovedConstant).Msg("removed symbols with constant data")
	}

	report.SymbolsKept = len(adj.Columns())
	if report.SymbolsKept < 2 {
		return nil, nil, fmt.Errorf("preprocess: only %d usable symbols after cleaning", report.SymbolsKept)
	}

	// Cleaning must leave a dense panel; anything else is a bug upstream.
	if remaining := adj.TotalMissing(); remaining > 0 {
		return nil, nil, fmt.Errorf("preprocess: %d missing cells survived cleaning", remaining)
	}
	return adj, report, nil
}

// WriteRemovalLog appends removed symbols to an audit log file.
func WriteRemovalLog(report *Report, path string) error {
	if len(report.RemovedMissing) == 0 && len(report.RemovedConstant) == 0 {
		return nil
	}
	var b strings.Builder
	if len(report.RemovedMissing) > 0 {
		b.WriteString("removed (missing adj_close data):\n")
		for _, t := range report.RemovedMissing {
			b.WriteString("  " + t + "\n")
		}
	}
	if len(report.RemovedConstant) > 0 {
		b.WriteString("removed (constant adj_close data):\n")
		for _, t := range report.RemovedConstant {
			b.WriteString("  " + t + "\n")
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open removal log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("write removal log: %w", err)
	}
	return nil
}
