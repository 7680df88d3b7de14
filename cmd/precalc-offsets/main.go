// Command precalc-offsets bakes per-zoom-bucket offset geometry so lines
// sharing a corridor render side by side instead of on top of each other.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/FabianUB/minibarcelona3d-sub003/internal/geojson"
	"github.com/FabianUB/minibarcelona3d-sub003/internal/offsets"
)

func main() {
	input := flag.String("input", "data/lines.geojson", "line geometry FeatureCollection")
	outDir := flag.String("out-dir", "data", "directory for the per-bucket artifacts")
	threshold := flag.Float64("threshold", 100, "vertex closeness threshold in meters")
	flag.Parse()

	fc, err := geojson.Load(*input)
	if err != nil {
		log.Fatalf("load geometry: %v", err)
	}

	gen := offsets.New(*threshold)
	for _, bucket := range offsets.Buckets {
		out := filepath.Join(*outDir, fmt.Sprintf("offsets-%s.geojson", bucket.Name))
		shifted := gen.Generate(fc, bucket.MultiplierMeters)
		if err := geojson.Write(out, shifted); err != nil {
			log.Fatalf("write %s bucket: %v", bucket.Name, err)
		}
		log.Printf("wrote %s bucket (%gm multiplier) -> %s", bucket.Name, bucket.MultiplierMeters, out)
	}
}
