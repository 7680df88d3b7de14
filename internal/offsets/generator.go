// Package offsets generates the per-zoom-bucket offset geometry consumed by
// the map renderer. Vertices that run close to another line are pushed
// perpendicular to the local direction of travel by a fixed per-line slot,
// so overlapping rail corridors render as distinct parallel strands.
//
// The closeness test here is an independent single-vertex pass; it does not
// reuse the proximity analyzer's cluster ranges.
package offsets

import (
	"github.com/FabianUB/minibarcelona3d-sub003/internal/geo"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/geojson"
)

// ZoomBucket names a map zoom range with its ground-distance multiplier.
// Screen-proportional spacing differs from ground spacing across zoom
// levels, so each bucket gets its own artifact.
type ZoomBucket struct {
	Name             string  // artifact suffix, e.g. "low"
	MaxZoom          float64 // bucket applies up to and including this zoom; 0 means open-ended
	MultiplierMeters float64 // meters per slot unit
}

// Buckets are the precomputed zoom buckets, low zoom first.
var Buckets = []ZoomBucket{
	{Name: "low", MaxZoom: 15, MultiplierMeters: 30},
	{Name: "high", MaxZoom: 0, MultiplierMeters: 10},
}

// LineSlotMap fixes each line's slot within its line group, independent of
// proximity detection. Slot 0 is the center line and is never offset.
var LineSlotMap = map[string]int{
	"R1":  -2,
	"R2":  -1,
	"R3":  0,
	"R4":  1,
	"R7":  2,
	"R8":  3,
	"R11": -3,
	"R2N": 4,
	"R2S": -4,
	"R13": 5,
	"R14": -5,
	"R15": 6,
	"R16": -6,
	"R17": 7,
	"RG1": -7,
	"RT1": 8,
	"RT2": -8,
}

// LineSlot returns the slot for a line code; unknown lines sit on the
// center line and stay unperturbed.
func LineSlot(lineCode string) int {
	return LineSlotMap[lineCode]
}

// Generator perturbs line geometry for one zoom bucket at a time.
type Generator struct {
	ThresholdMeters float64
}

// New returns a generator using the given closeness threshold.
func New(thresholdMeters float64) *Generator {
	return &Generator{ThresholdMeters: thresholdMeters}
}

// Generate produces a full copy of the input collection with close vertices
// pushed perpendicular by multiplier x slot meters. Feature ordering and
// properties are preserved; the output is regenerated wholesale, never
// patched.
func (g *Generator) Generate(fc *geojson.FeatureCollection, multiplierMeters float64) *geojson.FeatureCollection {
	out := &geojson.FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]geojson.LineFeature, len(fc.Features)),
	}
	for i, f := range fc.Features {
		out.Features[i] = f
		out.Features[i].Geometry.Coordinates = g.offsetLine(fc, i, multiplierMeters)
	}
	return out
}

// offsetLine computes the perturbed coordinates for feature idx.
func (g *Generator) offsetLine(fc *geojson.FeatureCollection, idx int, multiplierMeters float64) [][2]float64 {
	feature := fc.Features[idx]
	coords := feature.Geometry.Coordinates
	result := make([][2]float64, len(coords))
	copy(result, coords)

	slot := LineSlot(feature.LineCode())
	if slot == 0 || len(coords) < 2 {
		return result
	}

	offset := multiplierMeters * float64(slot)
	for v, coord := range coords {
		if !g.nearOtherLine(fc, idx, coord) {
			continue // natural GPS position
		}
		bearing := localBearing(coords, v)
		lat, lng := geo.OffsetCoordinate(coord[1], coord[0], bearing, offset)
		result[v] = [2]float64{lng, lat}
	}
	return result
}

// nearOtherLine reports whether a vertex lies within the threshold of any
// other feature's geometry.
func (g *Generator) nearOtherLine(fc *geojson.FeatureCollection, idx int, coord [2]float64) bool {
	for j, other := range fc.Features {
		if j == idx {
			continue
		}
		for _, oc := range other.Geometry.Coordinates {
			if geo.Haversine(coord[1], coord[0], oc[1], oc[0]) < g.ThresholdMeters {
				return true
			}
		}
	}
	return false
}

// localBearing is the direction of travel at vertex v. Interior vertices
// average the incoming and outgoing segment bearings along the shorter
// angular difference; endpoints use their single adjacent segment.
func localBearing(coords [][2]float64, v int) float64 {
	switch {
	case v == 0:
		return geo.Bearing(coords[0][1], coords[0][0], coords[1][1], coords[1][0])
	case v == len(coords)-1:
		prev := coords[v-1]
		return geo.Bearing(prev[1], prev[0], coords[v][1], coords[v][0])
	default:
		in := geo.Bearing(coords[v-1][1], coords[v-1][0], coords[v][1], coords[v][0])
		out := geo.Bearing(coords[v][1], coords[v][0], coords[v+1][1], coords[v+1][0])
		return geo.AverageBearing(in, out)
	}
}
