// Package market models the wide daily price frame the pipeline operates
// on: one row per date, one column per {TICKER}_{field} series.
package market

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Column name suffixes for the OHLCV fields of a ticker.
const (
	FieldOpen     = "open"
	FieldHigh     = "high"
	FieldLow      = "low"
	FieldAdjClose = "adj_close"
	FieldVolume   = "volume"
)

// Bar is a single daily observation from a data provider.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Frame is a date-indexed matrix of named float columns. Missing cells are
// NaN. Column order is preserved for stable CSV output.
type Frame struct {
	Dates   []time.Time
	columns []string
	data    map[string][]float64
}

// NewFrame creates an empty frame over the given date index.
func NewFrame(dates []time.Time) *Frame {
	return &Frame{
		Dates: dates,
		data:  make(map[string][]float64),
	}
}

// ColumnName builds the canonical "{TICKER}_{field}" column name.
func ColumnName(ticker, field string) string {
	return strings.ToUpper(ticker) + "_" + field
}

// TickerOf returns the ticker part of a column name.
func TickerOf(column string) string {
	if i := strings.Index(column, "_"); i > 0 {
		return column[:i]
	}
	return column
}

// AddColumn registers a column; the slice length must match the date index.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.Dates) {
		return fmt.Errorf("frame: column %s has %d values for %d dates", name, len(values), len(f.Dates))
	}
	if _, exists := f.data[name]; !exists {
		f.columns = append(f.columns, name)
	}
	f.data[name] = values
	return nil
}

// Column returns the values of a column, or nil when absent.
func (f *Frame) Column(name string) []float64 {
	return f.data[name]
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// ColumnsWithSuffix returns columns whose name ends with "_" + field.
func (f *Frame) ColumnsWithSuffix(field string) []string {
	suffix := "_" + field
	var out []string
	for _, c := range f.columns {
		if strings.HasSuffix(c, suffix) {
			out = append(out, c)
		}
	}
	return out
}

// NumRows returns the length of the date index.
func (f *Frame) NumRows() int { return len(f.Dates) }

// DropColumns removes the named columns, ignoring unknown names.
func (f *Frame) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := f.columns[:0]
	for _, c := range f.columns {
		if _, gone := drop[c]; gone {
			delete(f.data, c)
			continue
		}
		kept = append(kept, c)
	}
	f.columns = kept
}

// Select returns a new frame containing only the named columns, sharing the
// date index and value slices.
func (f *Frame) Select(names ...string) *Frame {
	out := NewFrame(f.Dates)
	for _, n := range names {
		if v, ok := f.data[n]; ok {
			out.AddColumn(n, v)
		}
	}
	return out
}

// SliceDates returns the sub-frame with start <= date <= end. Value slices
// are views into the parent frame.
func (f *Frame) SliceDates(start, end time.Time) *Frame {
	lo := sort.Search(len(f.Dates), func(i int) bool { return !f.Dates[i].Before(start) })
	hi := sort.Search(len(f.Dates), func(i int) bool { return f.Dates[i].After(end) })
	out := NewFrame(f.Dates[lo:hi])
	for _, c := range f.columns {
		out.AddColumn(c, f.data[c][lo:hi])
	}
	return out
}

// DedupeDates drops rows with a repeated date, keeping the first occurrence.
// It returns the number of rows removed.
func (f *Frame) DedupeDates() int {
	keep := make([]int, 0, len(f.Dates))
	seen := make(map[time.Time]struct{}, len(f.Dates))
	for i, d := range f.Dates {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		keep = append(keep, i)
	}
	removed := len(f.Dates) - len(keep)
	if removed == 0 {
		return 0
	}
	dates := make([]time.Time, len(keep))
	for j, i := range keep {
		dates[j] = f.Dates[i]
	}
	for _, c := range f.columns {
		src := f.data[c]
		dst := make([]float64, len(keep))
		for j, i := range keep {
			dst[j] = src[i]
		}
		f.data[c] = dst
	}
	f.Dates = dates
	return removed
}

// ForwardFill replaces NaN cells with the last preceding value per column.
func (f *Frame) ForwardFill() {
	for _, c := range f.columns {
		v := f.data[c]
		last := math.NaN()
		for i := range v {
			if math.IsNaN(v[i]) {
				v[i] = last
			} else {
				last = v[i]
			}
		}
	}
}

// BackFill replaces NaN cells with the next following value per column.
func (f *Frame) BackFill() {
	for _, c := range f.columns {
		v := f.data[c]
		next := math.NaN()
		for i := len(v) - 1; i >= 0; i-- {
			if math.IsNaN(v[i]) {
				v[i] = next
			} else {
				next = v[i]
			}
		}
	}
}

// MissingCount returns the number of NaN cells in a column.
func (f *Frame) MissingCount(name string) int {
	var n int
	for _, v := range f.data[name] {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// TotalMissing returns the number of NaN cells across all columns.
func (f *Frame) TotalMissing() int {
	var n int
	for _, c := range f.columns {
		n += f.MissingCount(c)
	}
	return n
}

// JoinBars assembles a wide frame from per-ticker daily bars over the union
// of their dates, sorted ascending. Tickers absent on a date get NaN.
func JoinBars(bars map[string][]Bar) *Frame {
	dateSet := make(map[time.Time]struct{})
	for _, series := range bars {
		for _, b := range series {
			dateSet[b.Date] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	frame := NewFrame(dates)
	tickers := make([]string, 0, len(bars))
	for t := range bars {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		cols := map[string][]float64{
			FieldOpen:     nanSlice(len(dates)),
			FieldHigh:     nanSlice(len(dates)),
			FieldLow:      nanSlice(len(dates)),
			FieldAdjClose: nanSlice(len(dates)),
			FieldVolume:   nanSlice(len(dates)),
		}
		for _, b := range bars[ticker] {
			i := index[b.Date]
			cols[FieldOpen][i] = b.Open
			cols[FieldHigh][i] = b.High
			cols[FieldLow][i] = b.Low
			cols[FieldAdjClose][i] = b.Close
			cols[FieldVolume][i] = b.Volume
		}
		for _, field := range []string{FieldOpen, FieldHigh, FieldLow, FieldAdjClose, FieldVolume} {
			frame.AddColumn(ColumnName(ticker, field), cols[field])
		}
	}
	return frame
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
