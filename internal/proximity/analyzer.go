// Package proximity detects where transit lines run close enough together
// to visually collide on the map, and assigns deterministic perpendicular
// offsets so the renderer can separate them. It runs offline against the
// static line geometry; brute-force vertex scans are acceptable here.
package proximity

import (
	"sort"
	"time"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geo"
)

// maxCombinations bounds the segment output per cluster so lines with many
// disjoint overlap sections cannot explode the artifact.
const maxCombinations = 10

// Line is a named input polyline.
type Line struct {
	Code        string
	Coordinates [][2]float64 // [lng, lat] pairs
}

// IndexRange is an inclusive vertex index range into a line's polyline.
type IndexRange struct {
	Start int `json:"startIndex"`
	End   int `json:"endIndex"`
}

// LineRange is one line's contribution to a proximity segment.
type LineRange struct {
	LineCode     string     `json:"lineCode"`
	Range        IndexRange `json:"range"`
	OffsetMeters float64    `json:"offsetMeters"`
}

// Segment is a resolved group of overlapping line ranges with the offsets
// that pull them apart. Consumed read-only by the renderer.
type Segment struct {
	Lines  []LineRange `json:"lines"`
	Center [2]float64  `json:"center"` // [lng, lat] centroid of contributing vertices
}

// Report is the serialized proximity artifact.
type Report struct {
	ThresholdMeters  float64   `json:"threshold"`
	MinSegmentLength int       `json:"minSegmentLength"`
	GeneratedAt      time.Time `json:"generatedAt"`
	Segments         []Segment `json:"segments"`
}

// Analyzer holds the closeness thresholds.
type Analyzer struct {
	ThresholdMeters  float64 // closeness threshold between vertices
	MinSegmentLength int     // minimum qualifying range length, in vertices
}

// New returns an analyzer with the given thresholds.
func New(thresholdMeters float64, minSegmentLength int) *Analyzer {
	return &Analyzer{ThresholdMeters: thresholdMeters, MinSegmentLength: minSegmentLength}
}

// Analyze detects proximity clusters across all lines and emits segments
// with per-line offsets. Output ordering is deterministic for identical
// input.
func (a *Analyzer) Analyze(lines []Line) []Segment {
	n := len(lines)
	if n < 2 {
		return nil
	}

	// Sort by code so cluster and segment ordering never depends on input
	// order.
	sorted := make([]Line, n)
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	// closeLines[i][v] lists the other lines whose geometry passes within
	// the threshold of vertex v of line i.
	closeLines := make([][][]int, n)
	for i := range sorted {
		closeLines[i] = make([][]int, len(sorted[i].Coordinates))
		for v, coord := range sorted[i].Coordinates {
			for j := range sorted {
				if j == i {
					continue
				}
				if a.vertexNearLine(coord, sorted[j].Coordinates) {
					closeLines[i][v] = append(closeLines[i][v], j)
				}
			}
		}
	}

	// Cluster lines with union-find: two lines sharing a close vertex pair
	// belong to the same cluster.
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(x, y int) { parent[find(x)] = find(y) }
	for i := range closeLines {
		for _, others := range closeLines[i] {
			for _, j := range others {
				union(i, j)
			}
		}
	}

	clusters := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := find(i)
		clusters[root] = append(clusters[root], i)
	}
	roots := make([]int, 0, len(clusters))
	for root := range clusters {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	var segments []Segment
	for _, root := range roots {
		member := clusters[root]
		if len(member) < 2 {
			continue
		}
		segments = append(segments, a.clusterSegments(sorted, member, closeLines)...)
	}
	return segments
}

// vertexNearLine reports whether the vertex lies within the threshold of
// any vertex of the other line.
func (a *Analyzer) vertexNearLine(coord [2]float64, other [][2]float64) bool {
	for _, oc := range other {
		if geo.Haversine(coord[1], coord[0], oc[1], oc[0]) < a.ThresholdMeters {
			return true
		}
	}
	return false
}

// clusterSegments builds up to maxCombinations segments for one cluster.
func (a *Analyzer) clusterSegments(lines []Line, member []int, closeLines [][][]int) []Segment {
	memberSet := make(map[int]bool, len(member))
	for _, i := range member {
		memberSet[i] = true
	}

	// Qualifying contiguous close ranges per member line.
	ranges := make(map[int][]IndexRange, len(member))
	qualifying := 0
	for _, i := range member {
		rs := a.closeRanges(closeLines[i], memberSet)
		if len(rs) > 0 {
			ranges[i] = rs
			qualifying++
		}
	}
	if qualifying < 2 {
		return nil
	}

	// Combination k pairs each line's k-th qualifying range. The iteration
	// is bounded; lines with fewer ranges drop out of later combinations.
	var segments []Segment
	for k := 0; k < maxCombinations; k++ {
		var contributing []int
		for _, i := range member {
			if k < len(ranges[i]) {
				contributing = append(contributing, i)
			}
		}
		if len(contributing) < 2 {
			break
		}

		offsets := GenerateOffsetPattern(len(contributing))
		seg := Segment{}
		var sumLng, sumLat float64
		var count int
		for pos, i := range contributing {
			r := ranges[i][k]
			for v := r.Start; v <= r.End; v++ {
				sumLng += lines[i].Coordinates[v][0]
				sumLat += lines[i].Coordinates[v][1]
				count++
			}
			seg.Lines = append(seg.Lines, LineRange{
				LineCode:     lines[i].Code,
				Range:        r,
				OffsetMeters: offsets[pos],
			})
		}
		seg.Center = [2]float64{sumLng / float64(count), sumLat / float64(count)}
		segments = append(segments, seg)
	}
	return segments
}

// closeRanges extracts contiguous vertex ranges that are close to at least
// one cluster member, drops ranges shorter than MinSegmentLength and merges
// adjacent survivors.
func (a *Analyzer) closeRanges(vertexClose [][]int, memberSet map[int]bool) []IndexRange {
	var raw []IndexRange
	start := -1
	for v := range vertexClose {
		near := false
		for _, j := range vertexClose[v] {
			if memberSet[j] {
				near = true
				break
			}
		}
		if near {
			if start == -1 {
				start = v
			}
			continue
		}
		if start != -1 {
			raw = append(raw, IndexRange{Start: start, End: v - 1})
			start = -1
		}
	}
	if start != -1 {
		raw = append(raw, IndexRange{Start: start, End: len(vertexClose) - 1})
	}

	var kept []IndexRange
	for _, r := range raw {
		if r.End-r.Start+1 >= a.MinSegmentLength {
			kept = append(kept, r)
		}
	}
	return mergeRanges(kept)
}

// mergeRanges merges overlapping or directly adjacent index ranges. The
// input is already ordered by construction.
func mergeRanges(ranges []IndexRange) []IndexRange {
	if len(ranges) < 2 {
		return ranges
	}
	merged := []IndexRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// GenerateOffsetPattern returns n offsets symmetric around zero, in
// unitless slots later scaled by a per-zoom multiplier. n=1 yields [0],
// n=2 yields [-1, 1], n=3 yields [-2.5, 0, 2.5].
func GenerateOffsetPattern(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}
	offsets := make([]float64, n)
	if n%2 == 0 {
		for i := 0; i < n; i++ {
			offsets[i] = (float64(i) - float64(n)/2 + 0.5) * 2
		}
	} else {
		for i := 0; i < n; i++ {
			offsets[i] = float64(i-n/2) * 2.5
		}
	}
	return offsets
}
