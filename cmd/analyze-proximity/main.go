// Command analyze-proximity scans the line geometry for segments where
// multiple lines run close together and writes a proximity report consumed
// by the map renderer.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geojson"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/proximity"
)

func main() {
	input := flag.String("input", "data/lines.geojson", "line geometry FeatureCollection")
	output := flag.String("output", "data/proximity-report.json", "proximity report destination")
	threshold := flag.Float64("threshold", 100, "vertex closeness threshold in meters")
	minSegment := flag.Int("min-segment", 3, "minimum qualifying range length in vertices")
	flag.Parse()

	fc, err := geojson.Load(*input)
	if err != nil {
		log.Fatalf("load geometry: %v", err)
	}

	lines := make([]proximity.Line, 0, len(fc.Features))
	for i := range fc.Features {
		f := &fc.Features[i]
		lines = append(lines, proximity.Line{
			Code:        f.LineCode(),
			Coordinates: f.Geometry.Coordinates,
		})
	}

	analyzer := proximity.New(*threshold, *minSegment)
	segments := analyzer.Analyze(lines)

	report := proximity.Report{
		ThresholdMeters:  *threshold,
		MinSegmentLength: *minSegment,
		GeneratedAt:      time.Now().UTC(),
		Segments:         segments,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("write report: %v", err)
	}

	log.Printf("analyzed %d lines, %d proximity segments -> %s", len(lines), len(segments), *output)
}
