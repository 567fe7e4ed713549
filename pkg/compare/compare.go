package compare

import (
	"errors"

	"f1lapcompare/pkg/helper"
	"f1lapcompare/pkg/model"
)

// Build turns two already selected fastest laps, with their telemetry attached, into the
// comparison shown to the user. Sector markers are taken from the first driver's lap.
func Build(req model.Request, driver1 model.Driver, lap1 model.Lap, driver2 model.Driver, lap2 model.Lap) (model.Comparison, error) {
	if !lap1.Valid() {
		return model.Comparison{}, &NoLapsError{Driver: driver1.Code}
	}
	if !lap2.Valid() {
		return model.Comparison{}, &NoLapsError{Driver: driver2.Code}
	}

	sectors, err := SectorBoundaries(lap1.Sectors, lap1.Telemetry)
	if err != nil {
		var missing *MissingSectorDataError
		var empty *EmptyTelemetryError
		switch {
		case errors.As(err, &missing):
			missing.Driver = driver1.Code
		case errors.As(err, &empty):
			empty.Driver = driver1.Code
		}
		return model.Comparison{}, err
	}
	if len(lap2.Telemetry) == 0 {
		return model.Comparison{}, &EmptyTelemetryError{Driver: driver2.Code}
	}

	delta := ComputeDelta(driver1.Code, lap1.LapTime.Duration, driver2.Code, lap2.LapTime.Duration)

	return model.Comparison{
		Request: req,
		Laps:    [2]model.Lap{lap1, lap2},
		Traces: [2]model.Trace{
			{Driver: driver1, Points: TracePoints(lap1.Telemetry)},
			{Driver: driver2, Points: TracePoints(lap2.Telemetry)},
		},
		LapTimes: [2]string{
			helper.FormatLapTime(lap1.LapTime.Duration),
			helper.FormatLapTime(lap2.LapTime.Duration),
		},
		Delta:     delta,
		DeltaText: DeltaText(delta),
		Sectors:   sectors,
	}, nil
}

// TracePoints annotates samples with distance in km and elapsed lap time in seconds.
func TracePoints(samples []model.TelemetrySample) []model.TracePoint {
	elapsed := ElapsedSeconds(samples)
	points := make([]model.TracePoint, len(samples))
	for i, s := range samples {
		points[i] = model.TracePoint{
			DistanceKm:     s.Distance / 1000.0,
			ElapsedSeconds: elapsed[i],
			Speed:          s.Speed,
		}
	}
	return points
}
