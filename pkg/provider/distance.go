package provider

import "f1lapcompare/pkg/model"

const kmhToMs = 1 / 3.6

// AddDistance fills the Distance of every sample, in metres from the first one, integrating
// speed over time with the trapezoidal rule. Samples must be sorted by time.
func AddDistance(samples []model.TelemetrySample) {
	if len(samples) == 0 {
		return
	}
	samples[0].Distance = 0
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time.Sub(samples[i-1].Time).Seconds()
		if dt < 0 {
			dt = 0
		}
		avg := (samples[i-1].Speed + samples[i].Speed) / 2 * kmhToMs
		samples[i].Distance = samples[i-1].Distance + avg*dt
	}
}
