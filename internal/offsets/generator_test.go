package offsets

import (
	"math"
	"testing"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geo"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/geojson"
)

func lineFeature(code string, lonOffsetMeters float64) geojson.LineFeature {
	coords := make([][2]float64, 8)
	for i := range coords {
		lat := 41.38 + float64(i)*0.005
		lon := 2.17
		if lonOffsetMeters != 0 {
			lat, lon = geo.OffsetCoordinate(lat, lon, 0, lonOffsetMeters)
		}
		coords[i] = [2]float64{lon, lat}
	}
	return geojson.LineFeature{
		Type:       "Feature",
		ID:         code,
		Properties: geojson.LineProperties{ID: code, ShortCode: code, BrandColor: geojson.BrandColor(code)},
		Geometry:   geojson.LineStringGeometry{Type: "LineString", Coordinates: coords},
	}
}

func TestLineSlot(t *testing.T) {
	if LineSlot("R3") != 0 {
		t.Errorf("R3 must be the center line, got slot %d", LineSlot("R3"))
	}
	if LineSlot("R1") != -2 || LineSlot("R2") != -1 || LineSlot("R4") != 1 {
		t.Error("unexpected slot assignments for R1/R2/R4")
	}
	if LineSlot("X99") != 0 {
		t.Errorf("unknown lines default to the center slot, got %d", LineSlot("X99"))
	}
}

func TestGenerate(t *testing.T) {
	fc := &geojson.FeatureCollection{
		Type: "FeatureCollection",
		Features: []geojson.LineFeature{
			lineFeature("R3", 0),
			lineFeature("R4", 20),
		},
	}

	g := New(100)
	out := g.Generate(fc, 30)

	t.Run("PreservesFeatureOrderAndProperties", func(t *testing.T) {
		if len(out.Features) != 2 {
			t.Fatalf("expected 2 features, got %d", len(out.Features))
		}
		for i := range fc.Features {
			if out.Features[i].Properties != fc.Features[i].Properties {
				t.Errorf("feature %d properties changed", i)
			}
		}
	})

	t.Run("CenterSlotNeverOffset", func(t *testing.T) {
		for v, coord := range out.Features[0].Geometry.Coordinates {
			if coord != fc.Features[0].Geometry.Coordinates[v] {
				t.Errorf("R3 vertex %d moved", v)
			}
		}
	})

	t.Run("CloseVerticesOffsetBySlotTimesMultiplier", func(t *testing.T) {
		in := fc.Features[1].Geometry.Coordinates
		moved := out.Features[1].Geometry.Coordinates
		for v := range in {
			d := geo.Haversine(in[v][1], in[v][0], moved[v][1], moved[v][0])
			want := math.Abs(30 * float64(LineSlot("R4")))
			if math.Abs(d-want) > 0.01 {
				t.Errorf("vertex %d displaced %fm, want %fm", v, d, want)
			}
		}
	})

	t.Run("FarVerticesUntouched", func(t *testing.T) {
		far := &geojson.FeatureCollection{
			Type: "FeatureCollection",
			Features: []geojson.LineFeature{
				lineFeature("R3", 0),
				lineFeature("R4", 5000),
			},
		}
		farOut := g.Generate(far, 30)
		for v, coord := range farOut.Features[1].Geometry.Coordinates {
			if coord != far.Features[1].Geometry.Coordinates[v] {
				t.Errorf("isolated R4 vertex %d moved", v)
			}
		}
	})

	t.Run("InputNeverMutated", func(t *testing.T) {
		orig := lineFeature("R4", 20).Geometry.Coordinates
		for v, coord := range fc.Features[1].Geometry.Coordinates {
			if coord != orig[v] {
				t.Errorf("input vertex %d mutated by generation", v)
			}
		}
	})
}

func TestLocalBearing(t *testing.T) {
	// Straight northbound line: every vertex bearing is 0.
	coords := [][2]float64{
		{2.17, 41.38}, {2.17, 41.39}, {2.17, 41.40},
	}
	for v := 0; v < len(coords); v++ {
		b := localBearing(coords, v)
		if math.Abs(b) > 1e-6 && math.Abs(b-360) > 1e-6 {
			t.Errorf("vertex %d: bearing %f, want 0", v, b)
		}
	}
}

func TestBuckets(t *testing.T) {
	if len(Buckets) != 2 {
		t.Fatalf("expected 2 zoom buckets, got %d", len(Buckets))
	}
	if Buckets[0].MultiplierMeters <= Buckets[1].MultiplierMeters {
		t.Error("low-zoom bucket must use the larger multiplier")
	}
}
