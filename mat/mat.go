// Package mat holds small gonum matrix construction helpers shared by the
// model fitting packages and their tests.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var ErrColMismatch = errors.New("column size mismatch")

// NewDenseFromArray flattens a slice of rows into a dense matrix. All rows
// must have the same length.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewTarget wraps a slice of outcomes into the single column matrix shape the
// fitters expect.
func NewTarget(y []float64) *mat.Dense {
	return mat.NewDense(len(y), 1, y)
}
