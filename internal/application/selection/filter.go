package selection

// BestPairsCriteria is the strict post-filter applied to an aggregated
// selection output: tighter correlation, a cointegration t-statistic bound
// rather than a p-value, and a narrower half-life band suited to a
// six-month trading horizon.
type BestPairsCriteria struct {
	CorrelationMin float64
	CointTStatMax  float64
	HurstMax       float64
	HalfLifeMin    float64
	HalfLifeMax    float64
}

// FilterBest keeps the pairs meeting every bound. NaN statistics reject.
func FilterBest(pairs []*PairStats, c BestPairsCriteria) []*PairStats {
	var out []*PairStats
	for _, p := range pairs {
		if p.Correlation >= c.CorrelationMin &&
			p.CointTStat <= c.CointTStatMax &&
			p.AverageHurst < c.HurstMax &&
			p.HalfLife >= c.HalfLifeMin &&
			p.HalfLife <= c.HalfLifeMax {
			out = append(out, p)
		}
	}
	return out
}
