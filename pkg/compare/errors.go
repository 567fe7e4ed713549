package compare

import "fmt"

// NoLapsError means a driver has no timed lap in the session.
type NoLapsError struct {
	Driver string
}

func (e *NoLapsError) Error() string {
	if e.Driver == "" {
		return "no timed laps in this session"
	}
	return fmt.Sprintf("driver %s has no timed laps in this session", e.Driver)
}

// MissingSectorDataError means the reference lap lacks a sector time, so sector markers
// cannot be placed.
type MissingSectorDataError struct {
	Driver string
	Sector int // 1-based
}

func (e *MissingSectorDataError) Error() string {
	if e.Driver == "" {
		return fmt.Sprintf("sector %d time is missing on the reference lap", e.Sector)
	}
	return fmt.Sprintf("sector %d time is missing on the fastest lap of %s", e.Sector, e.Driver)
}

// EmptyTelemetryError means the selected lap came without car data samples.
type EmptyTelemetryError struct {
	Driver string
}

func (e *EmptyTelemetryError) Error() string {
	if e.Driver == "" {
		return "no telemetry samples for the selected lap"
	}
	return fmt.Sprintf("no telemetry samples for the fastest lap of %s", e.Driver)
}
