package market

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCSVRoundTrip(t *testing.T) {
	f := NewFrame([]time.Time{day(1), day(2), day(3)})
	f.AddColumn("AAA_adj_close", []float64{10.5, math.NaN(), 12})
	f.AddColumn("BBB_adj_close", []float64{20, 21, 22})

	path := filepath.Join(t.TempDir(), "frame.csv")
	if err := WriteCSV(f, path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if got.NumRows() != 3 {
		t.Fatalf("rows = %d, want 3", got.NumRows())
	}
	if !got.Dates[0].Equal(day(1)) {
		t.Errorf("first date = %v, want %v", got.Dates[0], day(1))
	}

	a := got.Column("AAA_adj_close")
	if a[0] != 10.5 || !math.IsNaN(a[1]) || a[2] != 12 {
		t.Errorf("AAA column = %v, want [10.5 NaN 12]", a)
	}
	b := got.Column("BBB_adj_close")
	if b[0] != 20 || b[2] != 22 {
		t.Errorf("BBB column = %v", b)
	}
}

func TestReadCSVBadDate(t *testing.T) {
	r := strings.NewReader("Date,A_adj_close\nnot-a-date,1\n")
	if _, err := readCSV(r); err == nil {
		t.Error("expected error for unparsable date")
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	r := strings.NewReader("Date\n2024-01-01\n")
	if _, err := readCSV(r); err == nil {
		t.Error("expected error for header without data columns")
	}
}
