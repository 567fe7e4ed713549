package compare

import (
	"math"

	"f1lapcompare/pkg/model"
)

// SectorBoundaries places the end of sector 1 and sector 2 on the distance axis of a lap.
// The stream sample whose elapsed lap time is nearest to the cumulative sector time is used;
// ties go to the earlier sample.
func SectorBoundaries(sectors [3]model.NullDuration, samples []model.TelemetrySample) ([]model.SectorBoundary, error) {
	for i, s := range sectors {
		if !s.Valid {
			return nil, &MissingSectorDataError{Sector: i + 1}
		}
	}
	if len(samples) == 0 {
		return nil, &EmptyTelemetryError{}
	}

	elapsed := ElapsedSeconds(samples)

	cumulative := [3]float64{}
	total := 0.0
	for i, s := range sectors {
		total += s.Duration.Seconds()
		cumulative[i] = total
	}

	// the end of sector 3 is the end of the lap, it is not drawn
	boundaries := make([]model.SectorBoundary, 0, 2)
	for i, target := range cumulative[:2] {
		idx := nearestSample(elapsed, target)
		boundaries = append(boundaries, model.SectorBoundary{
			Sector:     i + 1,
			DistanceKm: samples[idx].Distance / 1000.0,
		})
	}
	return boundaries, nil
}

// ElapsedSeconds returns, for every sample, the seconds since the first sample.
func ElapsedSeconds(samples []model.TelemetrySample) []float64 {
	elapsed := make([]float64, len(samples))
	if len(samples) == 0 {
		return elapsed
	}
	start := samples[0].Time
	for i, s := range samples {
		elapsed[i] = s.Time.Sub(start).Seconds()
	}
	return elapsed
}

func nearestSample(elapsed []float64, target float64) int {
	best := 0
	bestDiff := math.Abs(elapsed[0] - target)
	for i := 1; i < len(elapsed); i++ {
		diff := math.Abs(elapsed[i] - target)
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return best
}
