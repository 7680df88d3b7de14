// Package transit defines the vehicle position types exchanged between the
// simulator, the live feed client and the output boundaries (HTTP, NATS,
// Postgres).
package transit

import "time"

// Status describes what a vehicle is doing at a snapshot instant.
type Status string

const (
	StatusInTransitTo Status = "IN_TRANSIT_TO"
	StatusStoppedAt   Status = "STOPPED_AT"
)

// Source tags where a position came from. Each producer keeps its own
// concrete type; everything converges on VehiclePosition at the boundary.
type Source string

const (
	SourceSimulated Source = "simulated"
	SourceLive      Source = "live"
)

// SimulatedVehicle is one schedule-derived vehicle. The whole set is
// regenerated on every tick; instances are never mutated after creation.
type SimulatedVehicle struct {
	VehicleKey        string
	LineCode          string
	Direction         int // 0 = outbound, 1 = inbound
	DistanceAlongLine float64
	Latitude          float64
	Longitude         float64
	Bearing           float64 // degrees 0-360
	Status            Status
	Timestamp         time.Time
}

// LiveVehicle is an observed position from the live HTTP feed. It carries
// the same shape as SimulatedVehicle plus observation metadata.
type LiveVehicle struct {
	VehicleKey        string    `json:"vehicleKey"`
	LineCode          string    `json:"lineCode"`
	Direction         int       `json:"direction"`
	DistanceAlongLine float64   `json:"distanceAlongLine"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Bearing           float64   `json:"bearing"`
	Status            Status    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	VehicleID         string    `json:"vehicleId,omitempty"`
	TripID            string    `json:"tripId,omitempty"`
	Label             string    `json:"label,omitempty"`
}

// VehiclePosition is the common display projection served over HTTP and
// published to NATS.
type VehiclePosition struct {
	VehicleKey        string    `json:"vehicleKey"`
	LineCode          string    `json:"lineCode"`
	Direction         int       `json:"direction"`
	DistanceAlongLine float64   `json:"distanceAlongLine"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Bearing           float64   `json:"bearing"`
	Status            Status    `json:"status"`
	Source            Source    `json:"source"`
	Timestamp         time.Time `json:"timestamp"`
}

// Position projects a simulated vehicle onto the display type.
func (v SimulatedVehicle) Position() VehiclePosition {
	return VehiclePosition{
		VehicleKey:        v.VehicleKey,
		LineCode:          v.LineCode,
		Direction:         v.Direction,
		DistanceAlongLine: v.DistanceAlongLine,
		Latitude:          v.Latitude,
		Longitude:         v.Longitude,
		Bearing:           v.Bearing,
		Status:            v.Status,
		Source:            SourceSimulated,
		Timestamp:         v.Timestamp,
	}
}

// Position projects a live observation onto the display type, dropping the
// feed-only metadata.
func (v LiveVehicle) Position() VehiclePosition {
	return VehiclePosition{
		VehicleKey:        v.VehicleKey,
		LineCode:          v.LineCode,
		Direction:         v.Direction,
		DistanceAlongLine: v.DistanceAlongLine,
		Latitude:          v.Latitude,
		Longitude:         v.Longitude,
		Bearing:           v.Bearing,
		Status:            v.Status,
		Source:            SourceLive,
		Timestamp:         v.Timestamp,
	}
}
