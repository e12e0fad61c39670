package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// WriteCSV writes the frame with a Date column first, dates as YYYY-MM-DD,
// and empty cells for NaN.
func WriteCSV(f *Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return writeCSV(f, file)
}

func writeCSV(f *Frame, w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Date"}, f.Columns()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := f.Columns()
	row := make([]string, len(cols)+1)
	for i, d := range f.Dates {
		row[0] = d.Format(dateLayout)
		for j, c := range cols {
			v := f.Column(c)[i]
			if math.IsNaN(v) {
				row[j+1] = ""
			} else {
				row[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads a frame written by WriteCSV (or any wide CSV with a leading
// Date column). Blank and unparsable cells become NaN.
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return readCSV(file)
}

func readCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 || len(records[0]) < 2 {
		return nil, fmt.Errorf("read csv: missing header or columns")
	}

	header := records[0]
	cols := header[1:]
	dates := make([]time.Time, 0, len(records)-1)
	values := make([][]float64, len(cols))
	for j := range values {
		values[j] = make([]float64, 0, len(records)-1)
	}

	for i, rec := range records[1:] {
		d, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad date %q: %w", i+1, rec[0], err)
		}
		dates = append(dates, d)
		for j := range cols {
			cell := ""
			if j+1 < len(rec) {
				cell = rec[j+1]
			}
			v := math.NaN()
			if cell != "" {
				if parsed, err := strconv.ParseFloat(cell, 64); err == nil {
					v = parsed
				}
			}
			values[j] = append(values[j], v)
		}
	}

	frame := NewFrame(dates)
	for j, c := range cols {
		frame.AddColumn(c, values[j])
	}
	return frame, nil
}
