package domain

import "math"

// MinTimeToPeak is the lower bound applied to the physically derived Tp.
const MinTimeToPeak = 0.11

// TimeToPeak resolves the unit-hydrograph time to peak in hours for one
// surface. The physical method needs the surface's curve number.
//
// Physical:  tc = 0.14 C L^0.66 (CN/(200-CN))^-0.55 S^-0.3,  Tp = 2/3 tc,
// with L in km and S in m/m.
func TimeToPeak(p PeakInput, cn float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	switch p.Method {
	case PeakFromTp:
		return p.Tp, nil
	case PeakFromTc:
		return p.Tc * 2 / 3, nil
	}

	if !finite(cn) || cn <= 0 || cn > 100 {
		return 0, invalid("curve_number", cn, "must be in (0, 100]")
	}
	tc := 0.14 * p.Channelisation *
		math.Pow(p.LengthKm, 0.66) *
		math.Pow(cn/(200-cn), -0.55) *
		math.Pow(p.Slope, -0.3)
	return math.Max(tc/3*2, MinTimeToPeak), nil
}
