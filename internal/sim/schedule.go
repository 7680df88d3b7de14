package sim

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LineSchedule describes the service pattern of one line. Positions are
// derived entirely from these figures plus the line geometry.
type LineSchedule struct {
	LineCode         string  `yaml:"lineCode" validate:"required"`
	HeadwaySeconds   float64 `yaml:"headwaySeconds" validate:"gt=0"`
	AvgSpeedKmh      float64 `yaml:"avgSpeedKmh" validate:"gt=0"`
	DwellTimeSeconds float64 `yaml:"dwellTimeSeconds" validate:"gte=0"`
	StationCount     int     `yaml:"stationCount" validate:"gte=0"`
}

type scheduleFile struct {
	Lines []LineSchedule `yaml:"lines"`
}

// LoadSchedules reads and validates the line schedules YAML file.
func LoadSchedules(path string) ([]LineSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var f scheduleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(f.Lines) == 0 {
		return nil, fmt.Errorf("%s: no lines defined", path)
	}
	v := validator.New()
	for i, ls := range f.Lines {
		if err := v.Struct(ls); err != nil {
			return nil, fmt.Errorf("%s: line %d (%s): %w", path, i, ls.LineCode, err)
		}
	}
	return f.Lines, nil
}
