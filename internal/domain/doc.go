// Package domain turns a design-storm rainfall depth into discharge hydrographs
// using the SCS curve-number loss model and unit-hydrograph convolution.
//
// # Inputs
//
// A run is described by a [RunRequest]: one or more design events, one or more
// catchments, and optional overrides of the run [Settings].
//
//	Event:      "100yr" at 250 mm, "100yrCC" at 290 mm, ...
//	            Names containing "CC" use the climate-change intensity profile.
//	Catchment:  an identifier and 2 or 3 surfaces in fixed order:
//	            pervious, impervious, optional second impervious.
//	Surface:    area (ha), curve number (0 < CN <= 100), initial abstraction (mm),
//	            and one of three time-to-peak inputs (Tp, Tc, or physical).
//
// # Per-surface pipeline
//
//	CN            -> S  = (1000/CN - 10) * 25.4                        [mm]
//	peak input    -> Tp (direct, 2/3 Tc, or the channel formula, >= 0.11 h)
//	Tp            -> internal axis, interval = Tp * step fraction       [h]
//	axis, event   -> intensity multipliers from the 24 h profile
//	P, Ia, S      -> cumulative rainfall, cumulative excess, cumulative
//	                 runoff, incremental runoff                         [mm]
//	incremental   -> banded convolution with the dimensional unit
//	                 hydrograph, row sums = raw discharge               [m3/s]
//	raw           -> nearest-time lookup onto the shared output axis
//
// Rounding is applied to the raw discharge only. Intermediate series keep full
// precision.
//
// # Time axes
//
// Every axis starts at 0 and grows by repeated addition of its interval until
// the running value reaches 23.999999 h; values are rounded to 4 decimals. The
// internal axis depends on the surface's Tp, so two surfaces of one catchment
// are generally computed on different grids and only meet on the output axis.
//
// # Degenerate input
//
// Rainfall at or below the initial abstraction is not an error: the runoff depth
// clamps to zero and the surface contributes an all-zero column. Physically
// invalid input (CN out of range, non-positive area, interval or Tp) is rejected
// with a [ValidationError] before any grid is built.
package domain
