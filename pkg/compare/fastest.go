package compare

import (
	"f1lapcompare/pkg/model"
)

// FastestLap returns the lap with the smallest lap time among the timed laps. When two laps
// share the minimum, the first one in input order is returned.
func FastestLap(laps []model.Lap) (model.Lap, error) {
	best := -1
	for i, lap := range laps {
		if !lap.Valid() {
			continue
		}
		if best < 0 || lap.LapTime.Duration < laps[best].LapTime.Duration {
			best = i
		}
	}
	if best < 0 {
		driver := ""
		if len(laps) > 0 {
			driver = laps[0].Driver
		}
		return model.Lap{}, &NoLapsError{Driver: driver}
	}
	return laps[best], nil
}
