package domain

import "sort"

// Resample maps a series computed on internal onto output by nearest time.
// Equidistant neighbours resolve to the earlier one. The first output value is
// always 0.
func Resample(raw []float64, internal, output TimeAxis) ([]float64, error) {
	if len(internal) == 0 {
		return nil, invalid("internal_axis", 0, "must not be empty")
	}
	if len(raw) != len(internal) {
		return nil, invalid("raw_series", len(raw), "length must match the internal axis")
	}

	out := make([]float64, len(output))
	for j := 1; j < len(output); j++ {
		out[j] = raw[nearestIndex(internal, output[j])]
	}
	return out, nil
}

// nearestIndex is the index of the axis value closest to t. The axis is sorted,
// so only the two values around t's insertion point are candidates.
func nearestIndex(axis TimeAxis, t float64) int {
	i := sort.SearchFloat64s(axis, t)
	switch {
	case i == 0:
		return 0
	case i == len(axis):
		return len(axis) - 1
	case t-axis[i-1] <= axis[i]-t:
		return i - 1
	default:
		return i
	}
}
