package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Writer handles writing backtest artifacts to disk
type Writer struct {
	outputDir string
}

// NewWriter creates a writer under outputDir/<date>/
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: filepath.Join(outputDir, time.Now().Format("2006-01-02")),
	}
}

// OutputDir returns the full output directory path
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// WriteResults writes each pair result as a JSON line, with the summary
// as the final line.
func (w *Writer) WriteResults(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	resultsFile := filepath.Join(w.outputDir, "results.jsonl")
	file, err := os.Create(resultsFile)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, pair := range summary.Pairs {
		if err := enc.Encode(pair); err != nil {
			return fmt.Errorf("encode pair result: %w", err)
		}
	}
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteReport writes a markdown report of the backtest run.
func (w *Writer) WriteReport(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	reportFile := filepath.Join(w.outputDir, "report.md")
	file, err := os.Create(reportFile)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(w.generateMarkdownReport(summary)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func (w *Writer) generateMarkdownReport(summary *Summary) string {
	var report strings.Builder

	report.WriteString("# Pairs Backtest Report\n\n")
	report.WriteString(fmt.Sprintf("**Generated**: %s\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC")))
	report.WriteString(fmt.Sprintf("**Configuration**: EntryZ=%.1f, ExitZ=%.1f, TradingDays=%d\n\n",
		summary.Config.EntryZ, summary.Config.ExitZ, summary.Config.TradingDaysPerYear))

	report.WriteString("## Executive Summary\n\n")
	total := summary.Tested + summary.Skipped
	coverage := 0.0
	if total > 0 {
		coverage = float64(summary.Tested) / float64(total) * 100
	}
	report.WriteString(fmt.Sprintf("- **Coverage**: %d/%d pairs backtested (%.1f%%)\n", summary.Tested, total, coverage))
	report.WriteString(fmt.Sprintf("- **Mean Sharpe**: %.2f\n", summary.MeanSharpe))
	report.WriteString(fmt.Sprintf("- **Mean Sortino**: %.2f\n", summary.MeanSortino))
	report.WriteString(fmt.Sprintf("- **Mean Total Return**: %.2f%%\n", summary.MeanReturn*100))
	report.WriteString(fmt.Sprintf("- **Worst Max Drawdown**: %.2f%%\n\n", summary.WorstMDD*100))

	tested := make([]PairResult, 0, summary.Tested)
	for _, p := range summary.Pairs {
		if p.SkipReason == "" {
			tested = append(tested, p)
		}
	}
	sort.Slice(tested, func(i, j int) bool { return tested[i].Sharpe > tested[j].Sharpe })

	if len(tested) > 0 {
		report.WriteString("## Pair Results\n\n")
		report.WriteString("| Pair | Method | Trades | Win Rate | Total Return | Sharpe | Sortino | Max DD |\n")
		report.WriteString("|------|--------|-------:|---------:|-------------:|-------:|--------:|-------:|\n")
		for _, p := range tested {
			report.WriteString(fmt.Sprintf("| %s-%s | %s | %d | %.1f%% | %.2f%% | %.2f | %.2f | %.2f%% |\n",
				p.Leg1, p.Leg2, p.Method, p.Trades, p.WinRate*100,
				p.TotalReturn*100, p.Sharpe, p.Sortino, p.MaxDrawdown*100))
		}
		report.WriteString("\n")
	}

	if summary.Skipped > 0 {
		report.WriteString("## Skipped Pairs\n\n")
		report.WriteString("| Pair | Reason |\n")
		report.WriteString("|------|--------|\n")
		for _, p := range summary.Pairs {
			if p.SkipReason != "" {
				report.WriteString(fmt.Sprintf("| %s-%s | %s |\n", p.Leg1, p.Leg2, p.SkipReason))
			}
		}
		report.WriteString("\n")
	}

	report.WriteString("## Methodology\n\n")
	report.WriteString("Each pair trades the raw price spread against its formation-window distribution:\n\n")
	report.WriteString(fmt.Sprintf("1. **Entry**: short the spread at z >= %.1f, long at z <= -%.1f\n",
		summary.Config.EntryZ, summary.Config.EntryZ))
	report.WriteString(fmt.Sprintf("2. **Exit**: flatten when |z| <= %.1f\n", summary.Config.ExitZ))
	report.WriteString("3. **Accounting**: dollar-neutral legs, daily return is half the leg return spread\n")
	report.WriteString("4. **Metrics**: Sharpe, Sortino and drawdown computed on daily strategy returns\n\n")

	report.WriteString("## Artifact Paths\n\n")
	report.WriteString(fmt.Sprintf("- **Results JSONL**: `%s`\n", filepath.Join(w.outputDir, "results.jsonl")))
	report.WriteString(fmt.Sprintf("- **Report Markdown**: `%s`\n", filepath.Join(w.outputDir, "report.md")))

	return report.String()
}

// WriteSummaryJSON writes a compact machine-readable summary.
func (w *Writer) WriteSummaryJSON(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	summaryFile := filepath.Join(w.outputDir, "summary.json")
	file, err := os.Create(summaryFile)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	defer file.Close()

	compact := map[string]interface{}{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"tested":       summary.Tested,
		"skipped":      summary.Skipped,
		"mean_sharpe":  summary.MeanSharpe,
		"mean_sortino": summary.MeanSortino,
		"mean_return":  summary.MeanReturn,
		"worst_mdd":    summary.WorstMDD,
		"artifacts": map[string]string{
			"results": filepath.Join(w.outputDir, "results.jsonl"),
			"report":  filepath.Join(w.outputDir, "report.md"),
			"summary": filepath.Join(w.outputDir, "summary.json"),
		},
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(compact); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}
