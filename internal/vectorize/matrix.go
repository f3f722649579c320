package vectorize

import (
	"fmt"
	"math"
)

// Vector is a sparse row. Indices are strictly increasing column numbers.
type Vector struct {
	Indices []int
	Values  []float64
}

// Nnz returns the number of stored entries.
func (v Vector) Nnz() int {
	return len(v.Indices)
}

// Dot returns the inner product of v and w.
func (v Vector) Dot(w Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(w.Indices) {
		switch {
		case v.Indices[i] == w.Indices[j]:
			dot += v.Values[i] * w.Values[j]
			i++
			j++
		case v.Indices[i] < w.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// SquaredNorm returns the sum of squared values.
func (v Vector) SquaredNorm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return sum
}

// EuclideanDistance returns the L2 distance between v and w.
func EuclideanDistance(v, w Vector) float64 {
	d := v.SquaredNorm() + w.SquaredNorm() - 2*v.Dot(w)
	if d < 0 {
		return 0
	}
	return math.Sqrt(d)
}

// Matrix is a row-major sparse matrix with a fixed column count.
type Matrix struct {
	Data []Vector
	Cols int
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	if m == nil {
		return 0
	}
	return len(m.Data)
}

// Row returns row i.
func (m *Matrix) Row(i int) (Vector, error) {
	if i < 0 || i >= m.Rows() {
		return Vector{}, fmt.Errorf("row %d out of range [0, %d)", i, m.Rows())
	}
	return m.Data[i], nil
}
