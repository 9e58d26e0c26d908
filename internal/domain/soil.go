package domain

// SoilStorage returns the potential maximum retention S in mm for a curve
// number in (0, 100].
func SoilStorage(cn float64) (float64, error) {
	if !finite(cn) || cn <= 0 || cn > 100 {
		return 0, invalid("curve_number", cn, "must be in (0, 100]")
	}
	return (1000/cn - 10) * 25.4, nil
}
