package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSchedules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lines.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSchedules(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		path := writeSchedules(t, `
lines:
  - lineCode: R1
    headwaySeconds: 360
    avgSpeedKmh: 55
    dwellTimeSeconds: 30
    stationCount: 29
  - lineCode: R3
    headwaySeconds: 1800
    avgSpeedKmh: 50
    dwellTimeSeconds: 45
    stationCount: 23
`)
		schedules, err := LoadSchedules(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(schedules) != 2 {
			t.Fatalf("expected 2 schedules, got %d", len(schedules))
		}
		if schedules[0].LineCode != "R1" || schedules[0].HeadwaySeconds != 360 {
			t.Errorf("unexpected first schedule %+v", schedules[0])
		}
	})

	t.Run("MissingLineCode", func(t *testing.T) {
		path := writeSchedules(t, `
lines:
  - headwaySeconds: 360
    avgSpeedKmh: 55
`)
		if _, err := LoadSchedules(path); err == nil {
			t.Fatal("expected validation error for missing lineCode")
		}
	})

	t.Run("NonPositiveHeadway", func(t *testing.T) {
		path := writeSchedules(t, `
lines:
  - lineCode: R1
    headwaySeconds: 0
    avgSpeedKmh: 55
`)
		_, err := LoadSchedules(path)
		if err == nil {
			t.Fatal("expected validation error for zero headway")
		}
		if !strings.Contains(err.Error(), "R1") {
			t.Errorf("error should name the offending line: %v", err)
		}
	})

	t.Run("NegativeDwellRejected", func(t *testing.T) {
		path := writeSchedules(t, `
lines:
  - lineCode: R1
    headwaySeconds: 360
    avgSpeedKmh: 55
    dwellTimeSeconds: -5
`)
		if _, err := LoadSchedules(path); err == nil {
			t.Fatal("expected validation error for negative dwell")
		}
	})

	t.Run("EmptyFile", func(t *testing.T) {
		path := writeSchedules(t, "lines: []\n")
		if _, err := LoadSchedules(path); err == nil {
			t.Fatal("expected error for empty schedule list")
		}
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		path := writeSchedules(t, "lines: [unclosed\n")
		if _, err := LoadSchedules(path); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadSchedules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error on missing file")
		}
	})
}
