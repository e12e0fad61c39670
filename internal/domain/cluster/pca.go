package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCAProject centers the data column-wise and projects it onto the first k
// principal components. data holds one row per observation; the result is
// nObs x k.
func PCAProject(data *mat.Dense, k int) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if rows < 2 {
		return nil, fmt.Errorf("pca: need at least 2 observations, got %d", rows)
	}
	if k <= 0 {
		return nil, fmt.Errorf("pca: invalid component count %d", k)
	}
	if k > cols {
		k = cols
	}
	// The covariance eigenbasis has at most rows-1 informative directions.
	if k > rows-1 {
		k = rows - 1
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("pca: decomposition failed")
	}
	var vec mat.Dense
	pc.VectorsTo(&vec)

	centered := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, data)
		mean := stat.Mean(col, nil)
		for i := 0; i < rows; i++ {
			centered.Set(i, j, data.At(i, j)-mean)
		}
	}

	var proj mat.Dense
	proj.Mul(centered, vec.Slice(0, cols, 0, k))

	out := mat.NewDense(rows, k, nil)
	out.Copy(&proj)
	return out, nil
}

// StandardizeColumns scales each column to zero mean and unit variance.
// Zero-variance columns are left centered, matching the upstream screens
// which substitute a unit divisor for constant series.
func StandardizeColumns(data *mat.Dense) *mat.Dense {
	rows, cols := data.Dims()
	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, data)
		mean := stat.Mean(col, nil)
		sd := stat.StdDev(col, nil)
		if sd == 0 || rows < 2 {
			sd = 1
		}
		for i := 0; i < rows; i++ {
			out.Set(i, j, (data.At(i, j)-mean)/sd)
		}
	}
	return out
}
