package view

import "math"

// Histogram bins sample amplitudes for an amplitude-histogram subplot.
// Samples are binned by absolute value over [0, max]; max <= 0
// auto-scales to the largest amplitude present. Values above max land
// in the last bin; NaN and infinite samples are skipped. The result
// pairs with visual.BarVertices: counts become bar heights, the bar's
// data bounds carry the normalization.
func Histogram(samples []float32, bins int, max float32) []float32 {
	if bins <= 0 || len(samples) == 0 {
		return nil
	}
	if max <= 0 {
		for _, s := range samples {
			a := float64(s)
			if math.IsNaN(a) || math.IsInf(a, 0) {
				continue
			}
			if v := float32(math.Abs(a)); v > max {
				max = v
			}
		}
		if max == 0 {
			max = 1
		}
	}

	counts := make([]float32, bins)
	scale := float32(bins) / max
	for _, s := range samples {
		a := float64(s)
		if math.IsNaN(a) || math.IsInf(a, 0) {
			continue
		}
		i := int(float32(math.Abs(a)) * scale)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts
}
