package domain

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

// Dimensionless SCS unit hydrograph, q/qp at t/Tp = 0, 0.1, ..., 5.0.
var unitHydrographOrdinates = [51]float64{
	0.000, 0.030, 0.100, 0.190, 0.310, 0.470, 0.660, 0.820, 0.930, 0.990,
	1.000, 0.990, 0.930, 0.860, 0.780, 0.680, 0.560, 0.460, 0.390, 0.330,
	0.280, 0.240, 0.207, 0.177, 0.147, 0.127, 0.107, 0.092, 0.077, 0.066,
	0.055, 0.048, 0.040, 0.034, 0.029, 0.025, 0.021, 0.018, 0.015, 0.013,
	0.011, 0.010, 0.009, 0.007, 0.006, 0.005, 0.004, 0.003, 0.002, 0.001,
	0.000,
}

const (
	unitHydrographStep = 0.1
	unitHydrographSpan = 5.0
)

var unitHydrographCurve = func() *interp.PiecewiseLinear {
	xs := make([]float64, len(unitHydrographOrdinates))
	for i := range xs {
		xs[i] = float64(i) * unitHydrographStep
	}
	pl := &interp.PiecewiseLinear{}
	if err := pl.Fit(xs, unitHydrographOrdinates[:]); err != nil {
		panic(err)
	}
	return pl
}()

// UnitHydrographOrdinates returns a copy of the dimensionless table.
func UnitHydrographOrdinates() []float64 {
	out := make([]float64, len(unitHydrographOrdinates))
	copy(out, unitHydrographOrdinates[:])
	return out
}

// DimensionlessOrdinates samples the unit hydrograph at t/Tp = k * stepFraction
// for k = 0 .. 5/stepFraction, truncated to at most n values. The default step
// of 0.1 reads the table directly; other steps interpolate linearly.
func DimensionlessOrdinates(stepFraction float64, n int) []float64 {
	k := int(math.Floor(unitHydrographSpan/stepFraction+1e-9)) + 1
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	out := make([]float64, k)
	if math.Abs(stepFraction-unitHydrographStep) < 1e-12 {
		copy(out, unitHydrographOrdinates[:k])
		return out
	}
	for i := range out {
		x := math.Min(float64(i)*stepFraction, unitHydrographSpan)
		out[i] = unitHydrographCurve.Predict(x)
	}
	return out
}

// PeakFlow is the unit-hydrograph peak in m3/s for a runoff depth in mm over
// an area in ha with time to peak in hours.
func PeakFlow(curveConstant, runoffMm, areaHa, tpHours float64) float64 {
	return (curveConstant * runoffMm * 0.001 * areaHa * 10000) / (tpHours * 3600)
}

// Convolution is the outcome of convolving one surface's incremental runoff.
type Convolution struct {
	PeakFlow  float64   `json:"peak_flow"`
	Ordinates []float64 `json:"ordinates"` // m3/s per mm of runoff
	Discharge []float64 `json:"discharge"` // m3/s on the internal axis
}

// Convolve factors the unit hydrograph by Qp/Q24 and sums the response to every
// incremental runoff depth. Column i of the N x N matrix holds d[i] times the
// factored ordinates starting at row i; rows past N-1 are dropped. The raw
// discharge is the row sum, rounded to decimals.
//
// A zero 24 h runoff depth yields zero ordinates and an all-zero discharge.
func Convolve(incremental []float64, runoff24h, areaHa, tp float64, cfg Settings) Convolution {
	n := len(incremental)
	qp := PeakFlow(cfg.CurveConstant, runoff24h, areaHa, tp)

	ordinates := DimensionlessOrdinates(cfg.StepFraction, n)
	factor := 0.0
	if runoff24h > 0 {
		factor = qp / runoff24h
	}
	floats.Scale(factor, ordinates)

	out := Convolution{PeakFlow: qp, Ordinates: ordinates, Discharge: make([]float64, n)}
	if n == 0 || len(ordinates) == 0 || factor == 0 {
		return out
	}

	// Only len(ordinates) diagonals of the matrix can be non-zero.
	response := mat.NewBandDense(n, n, len(ordinates)-1, 0, nil)
	for col, depth := range incremental {
		if depth == 0 {
			continue
		}
		for k, q := range ordinates {
			row := col + k
			if row >= n {
				break
			}
			response.SetBand(row, col, depth*q)
		}
	}

	ones := make([]float64, n)
	floats.AddConst(1, ones)
	var sums mat.VecDense
	sums.MulVec(response, mat.NewVecDense(n, ones))
	for i := range out.Discharge {
		out.Discharge[i] = roundTo(sums.AtVec(i), cfg.Decimals)
	}
	return out
}
