package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// OLSResult holds the fitted coefficients and diagnostics of a least-squares
// regression. TStats are indexed like Params.
type OLSResult struct {
	Params    []float64
	StdErrs   []float64
	TStats    []float64
	Residuals []float64
	SSR       float64
	Nobs      int
	NParams   int
}

// OLS fits y = X*beta by least squares. x holds one row per observation.
func OLS(y []float64, x [][]float64) (*OLSResult, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, fmt.Errorf("ols: mismatched dimensions (%d y, %d x rows)", n, len(x))
	}
	k := len(x[0])
	if k == 0 {
		return nil, fmt.Errorf("ols: empty design matrix")
	}
	if n <= k {
		return nil, fmt.Errorf("ols: %d observations insufficient for %d regressors", n, k)
	}

	flat := make([]float64, 0, n*k)
	for i, row := range x {
		if len(row) != k {
			return nil, fmt.Errorf("ols: ragged design matrix at row %d", i)
		}
		flat = append(flat, row...)
	}
	X := mat.NewDense(n, k, flat)
	Y := mat.NewVecDense(n, y)

	var beta mat.Dense
	if err := beta.Solve(X, Y); err != nil {
		return nil, fmt.Errorf("ols: solve failed: %w", err)
	}

	params := make([]float64, k)
	for j := 0; j < k; j++ {
		params[j] = beta.At(j, 0)
	}

	residuals := make([]float64, n)
	ssr := 0.0
	for i := 0; i < n; i++ {
		fitted := 0.0
		for j := 0; j < k; j++ {
			fitted += x[i][j] * params[j]
		}
		residuals[i] = y[i] - fitted
		ssr += residuals[i] * residuals[i]
	}

	sigma2 := ssr / float64(n-k)

	var xtx, inv mat.Dense
	xtx.Mul(X.T(), X)
	stdErrs := make([]float64, k)
	tStats := make([]float64, k)
	if err := inv.Inverse(&xtx); err != nil {
		// Near-singular design: report coefficients without inference.
		for j := range stdErrs {
			stdErrs[j] = math.NaN()
			tStats[j] = math.NaN()
		}
	} else {
		for j := 0; j < k; j++ {
			stdErrs[j] = math.Sqrt(sigma2 * inv.At(j, j))
			if stdErrs[j] > 0 {
				tStats[j] = params[j] / stdErrs[j]
			} else {
				tStats[j] = math.NaN()
			}
		}
	}

	return &OLSResult{
		Params:    params,
		StdErrs:   stdErrs,
		TStats:    tStats,
		Residuals: residuals,
		SSR:       ssr,
		Nobs:      n,
		NParams:   k,
	}, nil
}

// AIC returns the Akaike information criterion of a fitted regression,
// comparable across fits on the same sample.
func (r *OLSResult) AIC() float64 {
	n := float64(r.Nobs)
	if r.SSR <= 0 {
		return math.Inf(-1)
	}
	return n*math.Log(r.SSR/n) + 2*float64(r.NParams)
}
