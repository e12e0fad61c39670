package stats

import (
	"fmt"
	"math"
)

// CointResult holds the Engle-Granger test for the null of no cointegration.
type CointResult struct {
	Stat   float64
	PValue float64
}

// EngleGranger runs the two-step Engle-Granger test: OLS of y on x with a
// constant, then a unit-root test on the residuals against two-variable
// critical values.
func EngleGranger(y, x []float64) (*CointResult, error) {
	n := len(y)
	if n < 20 || len(x) != n {
		return nil, fmt.Errorf("coint: need equal-length series of at least 20 observations")
	}
	if IsConstant(y) || IsConstant(x) {
		return nil, fmt.Errorf("coint: constant series")
	}

	design := make([][]float64, n)
	for i := 0; i < n; i++ {
		design[i] = []float64{1, x[i]}
	}
	step1, err := OLS(y, design)
	if err != nil {
		return nil, fmt.Errorf("coint: cointegrating regression: %w", err)
	}

	// Residuals already have zero mean, so the unit-root regression carries
	// no deterministic terms.
	res, err := adfTest(step1.Residuals, -1, adfTrendNone, egTauC2Table)
	if err != nil {
		return nil, fmt.Errorf("coint: residual test: %w", err)
	}
	return &CointResult{Stat: res.Stat, PValue: res.PValue}, nil
}

// EngleGrangerBidirectional tests both orderings of the pair and keeps the
// result with the lower (more negative) statistic, matching how the
// formation-window screen treats the pair symmetrically.
func EngleGrangerBidirectional(a, b []float64) (*CointResult, error) {
	r1, err1 := EngleGranger(a, b)
	r2, err2 := EngleGranger(b, a)
	switch {
	case err1 != nil && err2 != nil:
		return nil, err1
	case err1 != nil:
		return r2, nil
	case err2 != nil:
		return r1, nil
	}
	if !math.IsNaN(r2.Stat) && r2.Stat < r1.Stat {
		return r2, nil
	}
	return r1, nil
}

// Engle-Granger tau for two variables, constant in the cointegrating
// regression. 1/5/10% rows carry the MacKinnon (2010) response surface.
var egTauC2Table = pValueTable{
	probs: []float64{0.01, 0.025, 0.05, 0.10, 0.90, 0.95, 0.975, 0.99},
	cvs: [][3]float64{
		{-3.9001, -10.534, -30.03},
		{-3.59, 0, 0},
		{-3.3377, -5.967, -8.98},
		{-3.0462, -4.069, -5.73},
		{-1.62, 0, 0},
		{-1.28, 0, 0},
		{-0.98, 0, 0},
		{-0.64, 0, 0},
	},
}
