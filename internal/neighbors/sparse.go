package neighbors

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperjump/tabiji/internal/vectorize"
)

// SparseIndex searches the rows of a TF-IDF matrix by Euclidean distance.
type SparseIndex struct {
	matrix *vectorize.Matrix
	norms  []float64
}

// NewSparseIndex fits an index over m. The matrix is shared, not copied.
func NewSparseIndex(m *vectorize.Matrix) (*SparseIndex, error) {
	if m == nil {
		return nil, fmt.Errorf("sparse index: nil matrix")
	}
	norms := make([]float64, m.Rows())
	for i, row := range m.Data {
		norms[i] = row.SquaredNorm()
	}
	return &SparseIndex{matrix: m, norms: norms}, nil
}

// Matrix returns the indexed matrix.
func (s *SparseIndex) Matrix() *vectorize.Matrix {
	return s.matrix
}

// Kind returns KindEuclidean.
func (s *SparseIndex) Kind() string {
	return KindEuclidean
}

// Len returns the number of indexed rows.
func (s *SparseIndex) Len() int {
	if s == nil {
		return 0
	}
	return s.matrix.Rows()
}

// Search returns the k rows nearest to query.
func (s *SparseIndex) Search(ctx context.Context, query vectorize.Vector, k int) ([]Neighbor, error) {
	for _, col := range query.Indices {
		if col < 0 || col >= s.matrix.Cols {
			return nil, fmt.Errorf("column %d for %d-column index: %w", col, s.matrix.Cols, ErrDimensionMismatch)
		}
	}
	qNorm := query.SquaredNorm()
	return scan(ctx, s.Len(), k, func(i int) float64 {
		d := qNorm + s.norms[i] - 2*query.Dot(s.matrix.Data[i])
		if d <= 0 {
			return 0
		}
		return math.Sqrt(d)
	})
}

// SearchRow returns the k rows nearest to the indexed row.
func (s *SparseIndex) SearchRow(ctx context.Context, row, k int) ([]Neighbor, error) {
	if row < 0 || row >= s.Len() {
		return nil, fmt.Errorf("row %d of %d: %w", row, s.Len(), ErrRowOutOfRange)
	}
	return s.Search(ctx, s.matrix.Data[row], k)
}
