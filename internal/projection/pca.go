// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package projection reduces the feature table to two dimensions for visual
// validation of cluster assignments. It is diagnostic only: nothing
// downstream consumes the projected coordinates.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point is one row of the feature table projected onto the first two
// principal components.
type Point struct {
	X, Y float64
}

// Project applies a log1p variance-stabilizing transform to the feature
// matrix, centers and scales each column to unit variance, and projects the
// rows onto the first two right singular vectors. Columns with zero variance
// are left unscaled; they contribute nothing to the components either way.
//
// Fails explicitly when the input has fewer than two rows or columns: a
// single centered row has no second singular vector and a 2-D projection of
// either shape would be meaningless.
func Project(vectors [][]float64) ([]Point, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("cannot project an empty feature table")
	}
	if n < 2 {
		return nil, fmt.Errorf("projection needs at least 2 feature rows, got %d", n)
	}
	dim := len(vectors[0])
	if dim < 2 {
		return nil, fmt.Errorf("projection needs at least 2 feature columns, got %d", dim)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("feature row %d has %d columns, want %d", i, len(v), dim)
		}
	}

	data := mat.NewDense(n, dim, nil)
	for i, row := range vectors {
		for j, v := range row {
			data.Set(i, j, math.Log1p(v))
		}
	}
	standardize(data)

	var svd mat.SVD
	if ok := svd.Factorize(data, mat.SVDThin); !ok {
		return nil, fmt.Errorf("singular value decomposition did not converge")
	}

	var v mat.Dense
	svd.VTo(&v)

	// Rows x first two right singular vectors.
	var components mat.Dense
	components.Mul(data, v.Slice(0, dim, 0, 2))

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{X: components.At(i, 0), Y: components.At(i, 1)}
	}
	return points, nil
}

// standardize centers each column on its mean and scales it to unit
// standard deviation in place.
func standardize(m *mat.Dense) {
	rows, cols := m.Dims()
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)

		var sum float64
		for _, v := range col {
			sum += v
		}
		mean := sum / float64(rows)

		var ss float64
		for _, v := range col {
			d := v - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(rows))

		for i := 0; i < rows; i++ {
			v := m.At(i, j) - mean
			if std > 0 {
				v /= std
			}
			m.Set(i, j, v)
		}
	}
}
