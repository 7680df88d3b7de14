// Package geo provides the geodesy primitives shared by the route
// preprocessor, the proximity analyzer and the offset generator.
//
// All functions use the same mean Earth radius. Mixing radii between the
// distance and offset functions produces sub-meter round-trip errors, so a
// single constant is authoritative for the whole build.
package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for every calculation.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance between two points in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Bearing calculates the initial bearing from point 1 to point 2 in degrees
// (0-360). Identical points yield 0.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// Destination returns the point reached by travelling the given distance in
// meters along the given bearing from (lat, lon). Negative distances travel
// backwards along the same great circle.
func Destination(lat, lon, bearingDeg, meters float64) (float64, float64) {
	phi1 := lat * math.Pi / 180
	lambda1 := lon * math.Pi / 180
	theta := bearingDeg * math.Pi / 180
	delta := meters / EarthRadiusMeters

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) +
		math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2))

	return phi2 * 180 / math.Pi, lambda2 * 180 / math.Pi
}

// OffsetCoordinate moves a point perpendicular to the direction of travel.
// The offset is applied to the right of the bearing (bearing + 90 degrees);
// negating meters mirrors the point to the left within float tolerance.
func OffsetCoordinate(lat, lon, bearingDeg, meters float64) (float64, float64) {
	return Destination(lat, lon, math.Mod(bearingDeg+90, 360), meters)
}

// Interpolate linearly interpolates between two [lng, lat] pairs.
func Interpolate(start, end [2]float64, fraction float64) [2]float64 {
	return [2]float64{
		start[0] + (end[0]-start[0])*fraction,
		start[1] + (end[1]-start[1])*fraction,
	}
}

// NormalizeDelta wraps an angular difference into [-180, 180).
func NormalizeDelta(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// AverageBearing averages two bearings along the shorter angular difference,
// so a pair straddling north (e.g. 350 and 10) averages to 0, not 180.
func AverageBearing(b1, b2 float64) float64 {
	avg := b1 + NormalizeDelta(b2-b1)/2
	return math.Mod(avg+360, 360)
}

// Clamp constrains a value between min and max.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
