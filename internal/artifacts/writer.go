// Package artifacts writes timestamped run outputs under a configured
// directory.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer drops timestamped JSON and CSV files into a run directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir/<runID>/.
func NewWriter(dir, runID string) *Writer {
	return &Writer{dir: filepath.Join(dir, runID)}
}

// Dir returns the run directory.
func (w *Writer) Dir() string { return w.dir }

// WriteJSON writes v as indented JSON to <timestamp>-<name>.json.
func (w *Writer) WriteJSON(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}

	path := filepath.Join(w.dir, w.filename(name, "json"))
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	return path, nil
}

// WriteCSV writes rows to <timestamp>-<name>.csv.
func (w *Writer) WriteCSV(name string, rows [][]string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}

	path := filepath.Join(w.dir, w.filename(name, "csv"))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	return path, nil
}

func (w *Writer) filename(name, ext string) string {
	return fmt.Sprintf("%s-%s.%s", time.Now().UTC().Format("20060102-150405"), name, ext)
}
