package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/backtest"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
)

// Output formats accepted by the --format flag.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// RenderPairs writes selected pairs in the requested format.
func RenderPairs(w io.Writer, format string, pairs []*selection.PairStats) error {
	switch format {
	case "", FormatTable:
		PrintPairsTable(w, pairs)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pairs)
	case FormatCSV:
		return selection.WritePairs(w, pairs)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or csv)", format)
	}
}

// RenderBacktest writes a backtest summary in the requested format.
func RenderBacktest(w io.Writer, format string, summary *backtest.Summary) error {
	switch format {
	case "", FormatTable:
		PrintBacktestTable(w, summary)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case FormatCSV:
		return writeBacktestCSV(w, summary)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or csv)", format)
	}
}

func writeBacktestCSV(w io.Writer, summary *backtest.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Pair", "Method", "Trades", "Win_Rate", "Total_Return", "Ann_Return",
		"Sharpe", "Sortino", "Max_Drawdown", "Days", "Skip_Reason",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range summary.Pairs {
		row := []string{
			p.Leg1 + "-" + p.Leg2,
			p.Method,
			strconv.Itoa(p.Trades),
			formatFloat(p.WinRate),
			formatFloat(p.TotalReturn),
			formatFloat(p.AnnReturn),
			formatFloat(p.Sharpe),
			formatFloat(p.Sortino),
			formatFloat(p.MaxDrawdown),
			strconv.Itoa(p.Days),
			p.SkipReason,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
