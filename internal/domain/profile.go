package domain

// intensityBand is one interval of a 24 h temporal pattern. The band covers
// [previous upper, upper).
type intensityBand struct {
	upper      float64 // hours
	multiplier float64 // intensity / mean 24 h intensity
}

// bandTolerance shifts the interior band edges so that axis values rounded to
// 4 decimals (11.8333 for 11 5/6) land in the band they belong to.
const bandTolerance = 1e-3

// Both profiles integrate to 24 over the day, so on a grid aligned with the
// band edges the rainfall series sums to the design depth.
var (
	standardProfile = []intensityBand{
		{6, 0.625},
		{9, 0.75},
		{10, 1.0},
		{11, 1.3},
		{11.5, 2.0},
		{35.0 / 3, 3.0},
		{71.0 / 6, 4.5},
		{12, 12.0},
		{73.0 / 6, 7.5},
		{37.0 / 3, 3.9},
		{12.5, 2.1},
		{13, 1.8},
		{14, 1.3},
		{15, 1.0},
		{18, 0.75},
		{24, 0.625},
	}

	climateChangeProfile = []intensityBand{
		{6, 0.6},
		{9, 0.7},
		{10, 0.95},
		{11, 1.45},
		{11.5, 1.9},
		{35.0 / 3, 3.1},
		{71.0 / 6, 4.9},
		{12, 13.6},
		{73.0 / 6, 8.2},
		{37.0 / 3, 4.1},
		{12.5, 2.1},
		{13, 1.7},
		{14, 1.45},
		{15, 0.95},
		{18, 0.7},
		{24, 0.6},
	}
)

func profileFor(e Event) []intensityBand {
	if e.ClimateChange() {
		return climateChangeProfile
	}
	return standardProfile
}

// IntensityAt returns the intensity multiplier for every time on the axis
// using the event's profile. Times at or after 24 h map to 0.
func IntensityAt(e Event, axis TimeAxis) []float64 {
	bands := profileFor(e)
	out := make([]float64, len(axis))
	for i, t := range axis {
		out[i] = bandMultiplier(bands, t)
	}
	return out
}

// bandMultiplier applies the tolerance to interior edges only; the last band
// runs to 24 h exactly so every t in [0, 24) has a multiplier.
func bandMultiplier(bands []intensityBand, t float64) float64 {
	lower := 0.0
	for i, b := range bands {
		upper := b.upper - bandTolerance
		if i == len(bands)-1 {
			upper = b.upper
		}
		if t >= lower-bandTolerance && t < upper {
			return b.multiplier
		}
		lower = b.upper
	}
	return 0
}
