// Package neighbors provides brute-force k-nearest-neighbor indexes.
package neighbors

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrRowOutOfRange is returned when a query names a row the index does not hold.
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrDimensionMismatch is returned when a query vector does not fit the index.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

const (
	// KindEuclidean is a brute-force index over sparse vectors under L2 distance.
	KindEuclidean = "brute_euclidean"
	// KindHaversine is a brute-force index over (lat, lon) radians under great-circle angle.
	KindHaversine = "brute_haversine"
)

// cancelCheckInterval is how many rows are scanned between context checks.
const cancelCheckInterval = 1024

// Neighbor is one search hit. Row is the position in the indexed data.
type Neighbor struct {
	Row      int
	Distance float64
}

// Index is a fitted nearest-neighbor index addressed by row.
type Index interface {
	Kind() string
	Len() int
	// SearchRow returns the k rows nearest to row, the row itself included.
	SearchRow(ctx context.Context, row, k int) ([]Neighbor, error)
}

// scan computes the distance to every row and returns the k smallest, nearest first.
// Equal distances are ordered by row.
func scan(ctx context.Context, n, k int, dist func(i int) float64) ([]Neighbor, error) {
	if k <= 0 || n == 0 {
		return nil, nil
	}
	all := make([]Neighbor, n)
	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		all[i] = Neighbor{Row: i, Distance: dist(i)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Row < all[j].Row
	})
	if k > n {
		k = n
	}
	return all[:k], nil
}
