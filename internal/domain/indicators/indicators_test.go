package indicators

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Error("positions before a full window should be NaN")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(out[i+2]-w) > 1e-12 {
			t.Errorf("sma[%d] = %v, want %v", i+2, out[i+2], w)
		}
	}
}

func TestSMABadWindow(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("out[%d] = %v, want NaN for oversized window", i, v)
		}
	}
}

func TestRSIAllGains(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out := RSI(values, 3)
	if !math.IsNaN(out[2]) {
		t.Error("RSI before a full window should be NaN")
	}
	for i := 3; i < len(out); i++ {
		if out[i] != 100 {
			t.Errorf("rsi[%d] = %v, want 100 for monotone gains", i, out[i])
		}
	}
}

func TestRSIAllLosses(t *testing.T) {
	values := []float64{8, 7, 6, 5, 4, 3, 2, 1}
	out := RSI(values, 3)
	for i := 3; i < len(out); i++ {
		if out[i] != 0 {
			t.Errorf("rsi[%d] = %v, want 0 for monotone losses", i, out[i])
		}
	}
}

func TestRSIFlat(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5, 5}
	out := RSI(values, 3)
	if out[3] != 50 {
		t.Errorf("flat series RSI = %v, want 50", out[3])
	}
}

func TestMeanIgnoringNaN(t *testing.T) {
	m := MeanIgnoringNaN([]float64{math.NaN(), 2, 4, math.NaN()})
	if m != 3 {
		t.Errorf("mean = %v, want 3", m)
	}
	if !math.IsNaN(MeanIgnoringNaN([]float64{math.NaN()})) {
		t.Error("all-NaN input should give NaN")
	}
}
