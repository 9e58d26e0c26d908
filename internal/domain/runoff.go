package domain

import "gonum.org/v1/gonum/floats"

// RunoffDepth24h is the SCS runoff depth (P-Ia)^2 / (P-Ia+S) in mm, zero while
// the rainfall has not exceeded the initial abstraction.
func RunoffDepth24h(p, ia, s float64) float64 {
	excess := p - ia
	if excess <= 0 {
		return 0
	}
	return excess * excess / (excess + s)
}

// RunoffSeries holds the intermediate series of the runoff transform, all in mm
// and all on the surface's internal axis.
type RunoffSeries struct {
	Rainfall         []float64 `json:"rainfall"`
	Cumulative       []float64 `json:"cumulative"`
	CumulativeExcess []float64 `json:"cumulative_excess"`
	CumulativeRunoff []float64 `json:"cumulative_runoff"`
	Incremental      []float64 `json:"incremental"`
}

// Runoff applies the SCS cumulative-infiltration equation step by step.
//
// The cumulative excess passes cumulative rainfall through once it reaches Ia
// and is zero before that; the SCS equation is then evaluated on it with the
// same Ia and S. The incremental series is the first cumulative runoff value
// followed by successive differences.
func Runoff(p, ia, s, intervalHours float64, intensity []float64) RunoffSeries {
	n := len(intensity)
	out := RunoffSeries{
		Rainfall:         make([]float64, n),
		Cumulative:       make([]float64, n),
		CumulativeExcess: make([]float64, n),
		CumulativeRunoff: make([]float64, n),
		Incremental:      make([]float64, n),
	}
	if n == 0 {
		return out
	}

	floats.ScaleTo(out.Rainfall, p/(24/intervalHours), intensity)
	floats.CumSum(out.Cumulative, out.Rainfall)

	// P <= Ia never produces runoff. Returning early keeps the series exactly
	// zero when the running sum overshoots P in the last bit.
	if RunoffDepth24h(p, ia, s) == 0 {
		return out
	}

	copy(out.CumulativeExcess, out.Cumulative)
	for i, c := range out.CumulativeExcess {
		if c < ia {
			out.CumulativeExcess[i] = 0
			continue
		}
		out.CumulativeRunoff[i] = RunoffDepth24h(c, ia, s)
	}

	out.Incremental[0] = out.CumulativeRunoff[0]
	floats.SubTo(out.Incremental[1:], out.CumulativeRunoff[1:], out.CumulativeRunoff[:n-1])
	return out
}
