package domain

import "testing"

const (
	testEvent     = "100yr"
	testEventCC   = "100yrCC"
	testCatchment = "C1"
)

func directTp(tp float64) PeakInput {
	return PeakInput{Method: PeakFromTp, Tp: tp}
}

func testSurface(kind SurfaceKind, cn, ia, areaHa, tp float64) Surface {
	return Surface{
		Kind:               kind,
		AreaHa:             areaHa,
		CurveNumber:        cn,
		InitialAbstraction: ia,
		Peak:               directTp(tp),
	}
}

func testCatchmentOf(id string, surfaces ...Surface) Catchment {
	return Catchment{ID: id, Surfaces: surfaces}
}

func standardCatchment(id string) Catchment {
	return testCatchmentOf(id,
		testSurface(Pervious, 80, 5, 12, 0.5),
		testSurface(Impervious, 98, 0, 4, 0.2),
	)
}

func mustAxis(t *testing.T, interval float64) TimeAxis {
	t.Helper()
	axis, err := BuildAxis(interval)
	if err != nil {
		t.Fatalf("BuildAxis(%v): %v", interval, err)
	}
	return axis
}
