package selection

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

var pairsHeader = []string{
	"Pair", "Method", "Cluster", "Segment",
	"Correlation", "Cointegration_TStat", "Cointegration_PValue",
	"Hurst_By_Lag", "Average_Hurst", "Half_Life", "Spread_STD",
	"Formation_Start", "Formation_End", "Trading_Start", "Trading_End",
}

const csvDateLayout = "2006-01-02"

// WritePairsCSV writes selection results in the canonical artifact layout.
func WritePairsCSV(pairs []*PairStats, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	return WritePairs(file, pairs)
}

// WritePairs streams selection results as CSV.
func WritePairs(out io.Writer, pairs []*PairStats) error {
	w := csv.NewWriter(out)
	if err := w.Write(pairsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range pairs {
		row := []string{
			p.Leg1 + "-" + p.Leg2,
			p.Method,
			strconv.Itoa(p.Cluster),
			p.Segment,
			formatFloat(p.Correlation),
			formatFloat(p.CointTStat),
			formatFloat(p.CointPValue),
			encodeHurst(p.HurstByLag),
			formatFloat(p.AverageHurst),
			formatFloat(p.HalfLife),
			formatFloat(p.SpreadStd),
			p.FormationStart.Format(csvDateLayout),
			p.FormationEnd.Format(csvDateLayout),
			p.TradingStart.Format(csvDateLayout),
			p.TradingEnd.Format(csvDateLayout),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadPairsCSV loads a selection artifact written by WritePairsCSV.
func ReadPairsCSV(path string) ([]*PairStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range pairsHeader {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %s", path, required)
		}
	}

	pairs := make([]*PairStats, 0, len(records)-1)
	for i, rec := range records[1:] {
		legs := strings.SplitN(rec[col["Pair"]], "-", 2)
		if len(legs) != 2 {
			return nil, fmt.Errorf("%s row %d: bad pair %q", path, i+1, rec[col["Pair"]])
		}
		clusterID, _ := strconv.Atoi(rec[col["Cluster"]])
		p := &PairStats{
			Leg1:         legs[0],
			Leg2:         legs[1],
			Method:       rec[col["Method"]],
			Cluster:      clusterID,
			Segment:      rec[col["Segment"]],
			Correlation:  parseFloat(rec[col["Correlation"]]),
			CointTStat:   parseFloat(rec[col["Cointegration_TStat"]]),
			CointPValue:  parseFloat(rec[col["Cointegration_PValue"]]),
			HurstByLag:   decodeHurst(rec[col["Hurst_By_Lag"]]),
			AverageHurst: parseFloat(rec[col["Average_Hurst"]]),
			HalfLife:     parseFloat(rec[col["Half_Life"]]),
			SpreadStd:    parseFloat(rec[col["Spread_STD"]]),
		}
		p.FormationStart = parseDate(rec[col["Formation_Start"]])
		p.FormationEnd = parseDate(rec[col["Formation_End"]])
		p.TradingStart = parseDate(rec[col["Trading_Start"]])
		p.TradingEnd = parseDate(rec[col["Trading_End"]])
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(csvDateLayout, s)
	return t
}

// encodeHurst serializes per-lag estimates as "lag:value|lag:value", lags
// ascending.
func encodeHurst(byLag map[int]float64) string {
	lags := make([]int, 0, len(byLag))
	for lag := range byLag {
		lags = append(lags, lag)
	}
	sort.Ints(lags)
	parts := make([]string, 0, len(lags))
	for _, lag := range lags {
		parts = append(parts, fmt.Sprintf("%d:%s", lag, formatFloat(byLag[lag])))
	}
	return strings.Join(parts, "|")
}

func decodeHurst(s string) map[int]float64 {
	out := make(map[int]float64)
	if s == "" {
		return out
	}
	for _, part := range strings.Split(s, "|") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		lag, err := strconv.Atoi(kv[0])
		if err != nil {
			continue
		}
		out[lag] = parseFloat(kv[1])
	}
	return out
}
