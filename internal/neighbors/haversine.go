package neighbors

import (
	"context"
	"fmt"
	"math"

	"github.com/hyperjump/tabiji/pkg/utils"
)

// Point is a coordinate in radians.
type Point struct {
	Lat float64
	Lon float64
}

// PointFromDegrees converts a latitude and longitude in degrees.
func PointFromDegrees(lat, lon float64) Point {
	return Point{Lat: utils.Radians(lat), Lon: utils.Radians(lon)}
}

// Valid reports whether p is finite.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) && !math.IsInf(p.Lat, 0) && !math.IsInf(p.Lon, 0)
}

// HaversineIndex searches points by great-circle angle. Distances are in radians.
type HaversineIndex struct {
	points []Point
}

// NewHaversineIndex fits an index over points. The slice is copied.
func NewHaversineIndex(points []Point) (*HaversineIndex, error) {
	for i, p := range points {
		if !p.Valid() {
			return nil, fmt.Errorf("haversine index: row %d has non-finite coordinates", i)
		}
	}
	return &HaversineIndex{points: append([]Point(nil), points...)}, nil
}

// Points returns the indexed points. Callers must not modify the result.
func (h *HaversineIndex) Points() []Point {
	return h.points
}

// Kind returns KindHaversine.
func (h *HaversineIndex) Kind() string {
	return KindHaversine
}

// Len returns the number of indexed points.
func (h *HaversineIndex) Len() int {
	if h == nil {
		return 0
	}
	return len(h.points)
}

// Search returns the k points nearest to q.
func (h *HaversineIndex) Search(ctx context.Context, q Point, k int) ([]Neighbor, error) {
	if !q.Valid() {
		return nil, fmt.Errorf("query point %v: %w", q, ErrDimensionMismatch)
	}
	return scan(ctx, len(h.points), k, func(i int) float64 {
		p := h.points[i]
		return utils.Haversine(q.Lat, q.Lon, p.Lat, p.Lon)
	})
}

// SearchRow returns the k points nearest to the indexed row.
func (h *HaversineIndex) SearchRow(ctx context.Context, row, k int) ([]Neighbor, error) {
	if row < 0 || row >= h.Len() {
		return nil, fmt.Errorf("row %d of %d: %w", row, h.Len(), ErrRowOutOfRange)
	}
	return h.Search(ctx, h.points[row], k)
}
