package preprocess

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func rawFrame(t *testing.T) *market.Frame {
	t.Helper()
	f := market.NewFrame([]time.Time{day(1), day(2), day(2), day(3)})
	// AAA has a gap that fills, BBB is clean, CCC is constant
	f.AddColumn("AAA_adj_close", []float64{10, math.NaN(), 99, 12})
	f.AddColumn("AAA_volume", []float64{100, 110, 99, 120})
	f.AddColumn("BBB_adj_close", []float64{20, 21, 99, 22})
	f.AddColumn("CCC_adj_close", []float64{5, 5, 99, 5})
	return f
}

func TestCleanHappyPath(t *testing.T) {
	clean, report, err := Clean(rawFrame(t))
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}

	if report.DuplicateDatesRemoved != 1 {
		t.Errorf("duplicates removed = %d, want 1", report.DuplicateDatesRemoved)
	}
	if report.MissingCellsFilled != 1 {
		t.Errorf("cells filled = %d, want 1", report.MissingCellsFilled)
	}
	if len(report.RemovedConstant) != 1 || report.RemovedConstant[0] != "CCC" {
		t.Errorf("removed constant = %v, want [CCC]", report.RemovedConstant)
	}
	if report.SymbolsKept != 2 {
		t.Errorf("symbols kept = %d, want 2", report.SymbolsKept)
	}

	// Only adj_close columns survive
	for _, c := range clean.Columns() {
		if !strings.HasSuffix(c, "_adj_close") {
			t.Errorf("unexpected column %s in clean panel", c)
		}
	}
	if clean.TotalMissing() != 0 {
		t.Errorf("clean panel has %d missing cells", clean.TotalMissing())
	}

	// Gap forward-filled from day 1
	a := clean.Column("AAA_adj_close")
	if a[1] != 10 {
		t.Errorf("filled cell = %v, want 10", a[1])
	}
}

func TestCleanTooFewSymbols(t *testing.T) {
	f := market.NewFrame([]time.Time{day(1), day(2)})
	f.AddColumn("AAA_adj_close", []float64{1, 2})
	f.AddColumn("BBB_adj_close", []float64{7, 7}) // constant, removed

	if _, _, err := Clean(f); err == nil {
		t.Error("expected error when fewer than 2 symbols survive")
	}
}

func TestCleanNoAdjClose(t *testing.T) {
	f := market.NewFrame([]time.Time{day(1)})
	f.AddColumn("AAA_volume", []float64{1})
	if _, _, err := Clean(f); err == nil {
		t.Error("expected error for frame without adj_close columns")
	}
}

func TestWriteRemovalLog(t *testing.T) {
	report := &Report{
		RemovedMissing:  []string{"AAA"},
		RemovedConstant: []string{"BBB"},
	}
	path := filepath.Join(t.TempDir(), "removed.log")
	if err := WriteRemovalLog(report, path); err != nil {
		t.Fatalf("WriteRemovalLog failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "AAA") || !strings.Contains(string(data), "BBB") {
		t.Errorf("log missing symbols: %q", string(data))
	}

	// Empty report writes nothing
	empty := filepath.Join(t.TempDir(), "empty.log")
	if err := WriteRemovalLog(&Report{}, empty); err != nil {
		t.Fatalf("empty WriteRemovalLog failed: %v", err)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Error("empty report should not create a file")
	}
}
