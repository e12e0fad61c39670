package selection

import (
	"fmt"
	"math"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/stats"
)

// minObservations guards the unit-root machinery against tiny windows.
const minObservations = 30

// StatsParams configures the per-pair statistics computation.
type StatsParams struct {
	Significance float64 // ADF stationarity gate, typically 0.05
	HurstLags    []int
}

// ComputePairStats screens one candidate pair on formation prices. Both
// legs must look integrated of order one: a leg that is already stationary
// fails the gate because its "spread" would be dominated by the other leg.
// Returned errors are skip reasons, not failures of the run.
func ComputePairStats(leg1, leg2 string, s1, s2 []float64, p StatsParams) (*PairStats, error) {
	a, b := alignDropNaN(s1, s2)
	if len(a) < minObservations {
		return nil, fmt.Errorf("%s-%s: %w", leg1, leg2, ErrInsufficientData)
	}
	if stats.IsConstant(a) || stats.IsConstant(b) {
		return nil, fmt.Errorf("%s-%s: %w", leg1, leg2, ErrConstantSeries)
	}

	adf1, err := stats.ADF(a, -1)
	if err != nil {
		return nil, fmt.Errorf("%s adf: %w", leg1, err)
	}
	adf2, err := stats.ADF(b, -1)
	if err != nil {
		return nil, fmt.Errorf("%s adf: %w", leg2, err)
	}
	if adf1.PValue <= p.Significance || adf2.PValue <= p.Significance {
		return nil, fmt.Errorf("%s-%s: %w", leg1, leg2, ErrStationaryLeg)
	}

	coint, err := stats.EngleGrangerBidirectional(a, b)
	if err != nil {
		return nil, fmt.Errorf("%s-%s coint: %w", leg1, leg2, err)
	}

	spread := make([]float64, len(a))
	for i := range a {
		spread[i] = a[i] - b[i]
	}

	hurst := stats.HurstExponent(spread, p.HurstLags)

	r1 := stats.PctChange(a)
	r2 := stats.PctChange(b)

	return &PairStats{
		Leg1:         leg1,
		Leg2:         leg2,
		Cluster:      -1,
		Correlation:  stats.Correlation(r1, r2),
		CointTStat:   coint.Stat,
		CointPValue:  coint.PValue,
		HurstByLag:   hurst,
		AverageHurst: stats.AverageHurst(hurst),
		HalfLife:     stats.HalfLife(spread),
		SpreadStd:    stats.StdDev(spread),
	}, nil
}

// alignDropNaN keeps only the rows where both series are defined.
func alignDropNaN(s1, s2 []float64) ([]float64, []float64) {
	n := len(s1)
	if len(s2) < n {
		n = len(s2)
	}
	a := make([]float64, 0, n)
	b := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(s1[i]) || math.IsNaN(s2[i]) {
			continue
		}
		a = append(a, s1[i])
		b = append(b, s2[i])
	}
	return a, b
}
