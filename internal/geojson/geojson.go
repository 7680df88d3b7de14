// Package geojson holds the line-geometry artifact types shared by the
// build-time tools and the runtime simulator.
package geojson

import (
	"encoding/json"
	"fmt"
	"os"
)

// FeatureCollection is a GeoJSON FeatureCollection of LineString features,
// one per transit line.
type FeatureCollection struct {
	Type     string        `json:"type"`
	Features []LineFeature `json:"features"`
}

// LineFeature is a GeoJSON Feature carrying a single line's geometry.
type LineFeature struct {
	Type       string             `json:"type"`
	ID         string             `json:"id,omitempty"`
	Properties LineProperties     `json:"properties"`
	Geometry   LineStringGeometry `json:"geometry"`
}

// LineProperties contains the stable line identifier and branding.
type LineProperties struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	ShortCode  string `json:"short_code"`
	BrandColor string `json:"brand_color"`
	Order      int    `json:"order"`
}

// LineStringGeometry is a LineString of [lng, lat] pairs.
type LineStringGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Load reads and decodes a FeatureCollection from disk.
func Load(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%s: unexpected type %q", path, fc.Type)
	}
	return &fc, nil
}

// Write encodes a FeatureCollection to disk, indented for diffability.
func Write(path string, fc *FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LineCode returns the line identifier for a feature, preferring the
// short code over the feature ID.
func (f *LineFeature) LineCode() string {
	if f.Properties.ShortCode != "" {
		return f.Properties.ShortCode
	}
	if f.Properties.ID != "" {
		return f.Properties.ID
	}
	return f.ID
}

// LineColorMap contains brand colors for Rodalies lines.
// Colors sourced from official Rodalies Catalunya branding.
var LineColorMap = map[string]string{
	"R1":  "7DBCEC",
	"R2":  "26A741",
	"R2N": "D0DF00",
	"R2S": "146520",
	"R3":  "EB4128",
	"R4":  "F7A30D",
	"R7":  "B57CBB",
	"R8":  "88016A",
	"R11": "0069AA",
	"R13": "E52E87",
	"R14": "6C60A8",
	"R15": "978571",
	"R16": "B52B46",
	"R17": "F3B12E",
	"RG1": "409EF5",
	"RT1": "35BDB2",
	"RT2": "F965DE",
}

// BrandColor returns the brand color for a line, defaulting to gray.
func BrandColor(lineCode string) string {
	if c, ok := LineColorMap[lineCode]; ok {
		return c
	}
	return "888888"
}
