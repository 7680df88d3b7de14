// Package route turns raw line polylines into distance-indexed routes that
// answer "where is a vehicle after d meters" in O(log n).
package route

import (
	"fmt"
	"sort"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geo"
)

// DegenerateRouteError reports a polyline that cannot carry vehicles: fewer
// than two vertices, or every vertex identical.
type DegenerateRouteError struct {
	Reason string
}

func (e *DegenerateRouteError) Error() string {
	return fmt.Sprintf("degenerate route: %s", e.Reason)
}

// Route is an immutable polyline with cumulative haversine distances from
// the first vertex to each vertex. Cumulative[i] is monotonically
// non-decreasing; the last entry is the total length in meters.
type Route struct {
	Coordinates [][2]float64 // [lng, lat] pairs
	Cumulative  []float64
}

// Point is a resolved position along a route.
type Point struct {
	Lat     float64
	Lng     float64
	Bearing float64 // degrees 0-360, bearing of the bracketing segment
}

// Preprocess walks the polyline once and accumulates segment distances.
func Preprocess(coords [][2]float64) (*Route, error) {
	if len(coords) < 2 {
		return nil, &DegenerateRouteError{Reason: fmt.Sprintf("%d vertices, need at least 2", len(coords))}
	}

	cum := make([]float64, len(coords))
	total := 0.0
	for i := 1; i < len(coords); i++ {
		total += geo.Haversine(
			coords[i-1][1], coords[i-1][0],
			coords[i][1], coords[i][0],
		)
		cum[i] = total
	}
	if total == 0 {
		return nil, &DegenerateRouteError{Reason: "all vertices identical"}
	}

	return &Route{Coordinates: coords, Cumulative: cum}, nil
}

// TotalLength returns the route length in meters.
func (r *Route) TotalLength() float64 {
	return r.Cumulative[len(r.Cumulative)-1]
}

// PointAtDistance resolves the position d meters along the route. d is
// clamped to [0, TotalLength]. The bearing is that of the bracketing
// segment, not re-interpolated across neighbors; at normal vertex density
// this is visually smooth.
func (r *Route) PointAtDistance(d float64) Point {
	n := len(r.Coordinates)
	total := r.TotalLength()
	d = geo.Clamp(d, 0, total)

	// Find i such that Cumulative[i] <= d <= Cumulative[i+1].
	i := sort.SearchFloat64s(r.Cumulative, d)
	if i > 0 && (i == n || r.Cumulative[i] > d) {
		i--
	}
	if i >= n-1 {
		i = n - 2
	}

	p0 := r.Coordinates[i]
	p1 := r.Coordinates[i+1]
	segLen := r.Cumulative[i+1] - r.Cumulative[i]
	if segLen == 0 {
		// Zero-length segments are excluded by the input invariant, but a
		// guard here avoids dividing by zero on malformed data.
		return Point{Lat: p0[1], Lng: p0[0], Bearing: geo.Bearing(p0[1], p0[0], p1[1], p1[0])}
	}

	frac := (d - r.Cumulative[i]) / segLen
	pos := geo.Interpolate(p0, p1, frac)
	return Point{
		Lat:     pos[1],
		Lng:     pos[0],
		Bearing: geo.Bearing(p0[1], p0[0], p1[1], p1[0]),
	}
}
