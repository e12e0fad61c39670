package stats

import (
	"fmt"
	"math"
	"sort"
)

// ADFResult holds the augmented Dickey-Fuller test statistic for the null of
// a unit root.
type ADFResult struct {
	Stat   float64
	PValue float64
	Lag    int
	Nobs   int
}

// deterministic terms included in the test regression
type adfTrend int

const (
	adfTrendNone adfTrend = iota
	adfTrendConst
	adfTrendConstTrend
)

// ADF runs an augmented Dickey-Fuller test with constant and linear trend,
// choosing the lag order in 0..maxLag by AIC. maxLag < 0 selects the Schwert
// rule 12*(T/100)^0.25.
func ADF(series []float64, maxLag int) (*ADFResult, error) {
	return adfTest(series, maxLag, adfTrendConstTrend, tauCTTable)
}

func adfTest(series []float64, maxLag int, trend adfTrend, table pValueTable) (*ADFResult, error) {
	n := len(series)
	if n < 10 {
		return nil, fmt.Errorf("adf: series too short (%d observations)", n)
	}
	if IsConstant(series) {
		return nil, fmt.Errorf("adf: constant series")
	}

	if maxLag < 0 {
		maxLag = int(math.Ceil(12.0 * math.Pow(float64(n)/100.0, 0.25)))
	}
	// Leave enough observations for the largest candidate regression.
	nDet := trendParamCount(trend)
	if limit := (n - 1 - nDet - 1) / 2; maxLag > limit {
		maxLag = limit
	}
	if maxLag < 0 {
		maxLag = 0
	}

	// Lag selection on the common sample starting at maxLag, statsmodels
	// style, then a refit at the chosen order on the full usable sample.
	bestLag, bestAIC := 0, math.Inf(1)
	for p := 0; p <= maxLag; p++ {
		fit, err := adfFit(series, p, maxLag, trend)
		if err != nil {
			continue
		}
		if aic := fit.AIC(); aic < bestAIC {
			bestAIC = aic
			bestLag = p
		}
	}

	fit, err := adfFit(series, bestLag, bestLag, trend)
	if err != nil {
		return nil, err
	}

	// The level coefficient comes after the deterministic terms.
	tau := fit.TStats[nDet]
	if math.IsNaN(tau) {
		return nil, fmt.Errorf("adf: degenerate regression")
	}

	return &ADFResult{
		Stat:   tau,
		PValue: table.pValue(tau, fit.Nobs),
		Lag:    bestLag,
		Nobs:   fit.Nobs,
	}, nil
}

func trendParamCount(trend adfTrend) int {
	switch trend {
	case adfTrendConstTrend:
		return 2
	case adfTrendConst:
		return 1
	default:
		return 0
	}
}

// adfFit regresses the first difference on deterministic terms, the lagged
// level, and p lagged differences, starting at diff index start.
func adfFit(series []float64, p, start int, trend adfTrend) (*OLSResult, error) {
	d := Diff(series, 1)
	if start < p {
		start = p
	}
	if start >= len(d) {
		return nil, fmt.Errorf("adf: no usable observations")
	}

	nDet := trendParamCount(trend)
	k := nDet + 1 + p
	y := make([]float64, 0, len(d)-start)
	x := make([][]float64, 0, len(d)-start)
	for i := start; i < len(d); i++ {
		row := make([]float64, 0, k)
		switch trend {
		case adfTrendConstTrend:
			row = append(row, 1, float64(i+1))
		case adfTrendConst:
			row = append(row, 1)
		}
		row = append(row, series[i]) // level at t-1
		for j := 1; j <= p; j++ {
			row = append(row, d[i-j])
		}
		y = append(y, d[i])
		x = append(x, row)
	}
	return OLS(y, x)
}

// pValueTable maps a tau statistic to an approximate p-value by monotone
// interpolation over tabulated quantiles. The 1/5/10% entries carry a
// MacKinnon finite-sample response surface; the remainder are asymptotic.
type pValueTable struct {
	probs []float64
	// cvs[i] = {b0, b1, b2}: critical value b0 + b1/T + b2/T^2
	cvs [][3]float64
}

func (t pValueTable) pValue(tau float64, nobs int) float64 {
	T := float64(nobs)
	crit := make([]float64, len(t.cvs))
	for i, c := range t.cvs {
		crit[i] = c[0] + c[1]/T + c[2]/(T*T)
	}
	if tau <= crit[0] {
		return 0.001
	}
	if tau >= crit[len(crit)-1] {
		return 0.999
	}
	i := sort.SearchFloat64s(crit, tau)
	lo, hi := crit[i-1], crit[i]
	frac := (tau - lo) / (hi - lo)
	return t.probs[i-1] + frac*(t.probs[i]-t.probs[i-1])
}

// Dickey-Fuller tau with constant and trend. Surface terms for the 1/5/10%
// rows follow MacKinnon (2010); outer quantiles are Fuller's asymptotic
// percentiles.
var tauCTTable = pValueTable{
	probs: []float64{0.01, 0.025, 0.05, 0.10, 0.90, 0.95, 0.975, 0.99},
	cvs: [][3]float64{
		{-3.9638, -8.353, -47.44},
		{-3.66, 0, 0},
		{-3.4126, -4.039, -17.83},
		{-3.1279, -2.418, -7.58},
		{-1.25, 0, 0},
		{-0.94, 0, 0},
		{-0.66, 0, 0},
		{-0.33, 0, 0},
	},
}
