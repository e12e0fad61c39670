package selection

import (
	"math"
	"sort"
)

// Criteria are the formation-window acceptance thresholds. HalfLifeMax is
// bound per window to the trading horizon so a pair is expected to revert
// within its trading period.
type Criteria struct {
	CorrelationMin float64
	CointPValueMax float64
	HurstMax       float64
	HalfLifeMin    float64
	HalfLifeMax    float64
}

// Accept applies the thresholds; spreadStdMax is the cohort gate (median of
// the candidate group). NaN statistics fail every comparison and reject.
func (c Criteria) Accept(s *PairStats, spreadStdMax float64) bool {
	return s.Correlation >= c.CorrelationMin &&
		s.CointPValue <= c.CointPValueMax &&
		s.SpreadStd <= spreadStdMax &&
		s.AverageHurst < c.HurstMax &&
		s.HalfLife >= c.HalfLifeMin &&
		s.HalfLife <= c.HalfLifeMax
}

// ApplyCohort filters a candidate cohort, gating spread dispersion at the
// cohort median. Clustered strategies call this once per cluster so the
// median is local to the group.
func ApplyCohort(stats []*PairStats, crit Criteria) []*PairStats {
	if len(stats) == 0 {
		return nil
	}
	median := medianSpreadStd(stats)
	var out []*PairStats
	for _, s := range stats {
		if crit.Accept(s, median) {
			out = append(out, s)
		}
	}
	return out
}

func medianSpreadStd(stats []*PairStats) float64 {
	vals := make([]float64, 0, len(stats))
	for _, s := range stats {
		if !math.IsNaN(s.SpreadStd) {
			vals = append(vals, s.SpreadStd)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
