package domain

import "math"

// TimeAxis is a strictly increasing sequence of times in hours starting at 0.
type TimeAxis []float64

const (
	// axisEnd is the value the running sum must reach before the axis stops.
	axisEnd = 23.999999

	// MaxAxisPoints bounds the size of any axis, and with it the convolution
	// matrix. 20000 points covers 24 h at roughly 4 s resolution.
	MaxAxisPoints = 20000

	axisDecimals = 4
)

// BuildAxis returns 0, i, 2i, ... up to the first value >= 23.999999, each
// rounded to 4 decimals. The running sum is kept unrounded.
func BuildAxis(intervalHours float64) (TimeAxis, error) {
	if !finite(intervalHours) || intervalHours <= 0 {
		return nil, invalid("interval_hours", intervalHours, "must be positive")
	}
	if math.Ceil(axisEnd/intervalHours)+1 > MaxAxisPoints {
		return nil, invalid("interval_hours", intervalHours, "too small: axis would exceed 20000 points")
	}

	axis := make(TimeAxis, 1, int(axisEnd/intervalHours)+2)
	for last := 0.0; last < axisEnd; {
		last += intervalHours
		axis = append(axis, last)
	}
	roundAll(axis, axisDecimals)
	return axis, nil
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

func roundAll(values []float64, decimals int) {
	for i, v := range values {
		values[i] = roundTo(v, decimals)
	}
}
