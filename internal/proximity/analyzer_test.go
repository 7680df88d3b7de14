package proximity

import (
	"math"
	"testing"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geo"
)

// northSouthLine builds a 10-vertex polyline heading north from (41.38,
// lonOffsetMeters east of 2.17), vertices ~550m apart.
func northSouthLine(lonOffsetMeters float64) [][2]float64 {
	coords := make([][2]float64, 10)
	for i := range coords {
		lat := 41.38 + float64(i)*0.005
		lon := 2.17
		if lonOffsetMeters != 0 {
			lat, lon = geo.OffsetCoordinate(lat, lon, 0, lonOffsetMeters)
		}
		coords[i] = [2]float64{lon, lat}
	}
	return coords
}

func TestGenerateOffsetPattern(t *testing.T) {
	t.Run("SingleLineIsCentered", func(t *testing.T) {
		got := GenerateOffsetPattern(1)
		if len(got) != 1 || got[0] != 0 {
			t.Errorf("expected [0], got %v", got)
		}
	})

	t.Run("TwoLines", func(t *testing.T) {
		got := GenerateOffsetPattern(2)
		if got[0] != -1 || got[1] != 1 {
			t.Errorf("expected [-1, 1], got %v", got)
		}
	})

	t.Run("ThreeLines", func(t *testing.T) {
		got := GenerateOffsetPattern(3)
		if got[0] != -2.5 || got[1] != 0 || got[2] != 2.5 {
			t.Errorf("expected [-2.5, 0, 2.5], got %v", got)
		}
	})

	t.Run("SymmetricAroundZero", func(t *testing.T) {
		for n := 1; n <= 8; n++ {
			sum := 0.0
			for _, o := range GenerateOffsetPattern(n) {
				sum += o
			}
			if math.Abs(sum) > 1e-9 {
				t.Errorf("n=%d: offsets sum to %f, want 0", n, sum)
			}
		}
	})
}

func TestAnalyze(t *testing.T) {
	t.Run("SingleLineNoOverlap", func(t *testing.T) {
		// Two lines more than 100m apart never cluster.
		a := New(100, 3)
		segments := a.Analyze([]Line{
			{Code: "R1", Coordinates: northSouthLine(0)},
			{Code: "R3", Coordinates: northSouthLine(5000)},
		})
		if len(segments) != 0 {
			t.Errorf("expected no segments, got %d", len(segments))
		}
	})

	t.Run("TwoParallelLines20mApart", func(t *testing.T) {
		a := New(100, 3)
		segments := a.Analyze([]Line{
			{Code: "R1", Coordinates: northSouthLine(0)},
			{Code: "R3", Coordinates: northSouthLine(20)},
		})
		if len(segments) != 1 {
			t.Fatalf("expected exactly 1 segment, got %d", len(segments))
		}
		seg := segments[0]
		if len(seg.Lines) != 2 {
			t.Fatalf("expected 2 participating lines, got %d", len(seg.Lines))
		}
		codes := map[string]bool{}
		for _, lr := range seg.Lines {
			codes[lr.LineCode] = true
		}
		if !codes["R1"] || !codes["R3"] {
			t.Errorf("expected lines R1 and R3, got %v", codes)
		}
		// Equal magnitude, opposite sign.
		if seg.Lines[0].OffsetMeters != -seg.Lines[1].OffsetMeters {
			t.Errorf("offsets not mirrored: %f and %f", seg.Lines[0].OffsetMeters, seg.Lines[1].OffsetMeters)
		}
		if seg.Lines[0].OffsetMeters == 0 {
			t.Error("two-line offsets must be nonzero")
		}
		// Full overlap: ranges cover all 10 vertices.
		for _, lr := range seg.Lines {
			if lr.Range.Start != 0 || lr.Range.End != 9 {
				t.Errorf("line %s range [%d, %d], want [0, 9]", lr.LineCode, lr.Range.Start, lr.Range.End)
			}
		}
	})

	t.Run("CentroidBetweenLines", func(t *testing.T) {
		a := New(100, 3)
		left := northSouthLine(0)
		segments := a.Analyze([]Line{
			{Code: "R1", Coordinates: left},
			{Code: "R3", Coordinates: northSouthLine(20)},
		})
		if len(segments) != 1 {
			t.Fatal("expected one segment")
		}
		center := segments[0].Center
		if center[1] < left[0][1] || center[1] > left[len(left)-1][1] {
			t.Errorf("centroid latitude %f outside line extent", center[1])
		}
	})

	t.Run("ShortOverlapDiscarded", func(t *testing.T) {
		// Only a single vertex of each line is close; below a min segment
		// length of 3, no segment qualifies.
		crossing := [][2]float64{
			{2.05, 41.38}, {2.12, 41.38}, {2.17, 41.38}, {2.22, 41.38}, {2.29, 41.38},
		}
		vertical := northSouthLine(0)
		a := New(100, 3)
		segments := a.Analyze([]Line{
			{Code: "R1", Coordinates: vertical},
			{Code: "R4", Coordinates: crossing},
		})
		if len(segments) != 0 {
			t.Errorf("expected crossing below min length to be discarded, got %d segments", len(segments))
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		lines := []Line{
			{Code: "R3", Coordinates: northSouthLine(20)},
			{Code: "R1", Coordinates: northSouthLine(0)},
		}
		a := New(100, 3)
		s1 := a.Analyze(lines)
		// Reversed input order must not change the output.
		s2 := a.Analyze([]Line{lines[1], lines[0]})
		if len(s1) != len(s2) {
			t.Fatalf("segment counts differ: %d vs %d", len(s1), len(s2))
		}
		for i := range s1 {
			for j := range s1[i].Lines {
				if s1[i].Lines[j] != s2[i].Lines[j] {
					t.Errorf("segment %d line %d differs: %+v vs %+v", i, j, s1[i].Lines[j], s2[i].Lines[j])
				}
			}
		}
	})
}

func TestMergeRanges(t *testing.T) {
	got := mergeRanges([]IndexRange{{0, 3}, {4, 6}, {9, 12}})
	if len(got) != 2 || got[0] != (IndexRange{0, 6}) || got[1] != (IndexRange{9, 12}) {
		t.Errorf("unexpected merge result %v", got)
	}
}
