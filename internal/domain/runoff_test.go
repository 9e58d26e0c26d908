package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestRunoffDepth24h(t *testing.T) {
	assert.InDelta(t, 56.94, RunoffDepth24h(100, 5, 63.5), 1e-2)
	assert.InDelta(t, 9025/158.5, RunoffDepth24h(100, 5, 63.5), 1e-12)
	assert.InDelta(t, 95.0, RunoffDepth24h(100, 5, 0), 1e-12)
}

func TestRunoffDepth24h_ClampsBelowInitialAbstraction(t *testing.T) {
	assert.Zero(t, RunoffDepth24h(5, 5, 63.5))
	assert.Zero(t, RunoffDepth24h(3, 5, 63.5))
	assert.Zero(t, RunoffDepth24h(0, 0, 63.5))
}

func TestRunoff_MassConsistency(t *testing.T) {
	interval := 1.0 / 6
	axis := mustAxis(t, interval)

	cases := []struct {
		name  string
		event Event
		ia    float64
		s     float64
	}{
		{"pervious", Event{Name: testEvent, DepthMm: 100}, 5, 63.5},
		{"impervious", Event{Name: testEvent, DepthMm: 100}, 0, 5.18},
		{"climate change", Event{Name: testEventCC, DepthMm: 140}, 5, 63.5},
		{"small storm", Event{Name: testEvent, DepthMm: 12}, 5, 120},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := Runoff(tc.event.DepthMm, tc.ia, tc.s, interval, IntensityAt(tc.event, axis))

			require.Len(t, series.Incremental, len(axis))
			assert.InDelta(t, tc.event.DepthMm, series.Cumulative[len(axis)-1], 1e-9)
			assert.InDelta(t, RunoffDepth24h(tc.event.DepthMm, tc.ia, tc.s), floats.Sum(series.Incremental), 1e-3)
		})
	}
}

func TestRunoff_ExcessZeroUntilInitialAbstraction(t *testing.T) {
	interval := 0.5
	axis := mustAxis(t, interval)
	e := Event{Name: testEvent, DepthMm: 100}
	ia := 5.0

	series := Runoff(e.DepthMm, ia, 63.5, interval, IntensityAt(e, axis))

	for i, c := range series.Cumulative {
		if c < ia {
			assert.Zero(t, series.CumulativeExcess[i], "step %d", i)
			assert.Zero(t, series.CumulativeRunoff[i], "step %d", i)
			assert.Zero(t, series.Incremental[i], "step %d", i)
			continue
		}
		assert.Equal(t, c, series.CumulativeExcess[i], "step %d", i)
	}
	// 100 mm * 0.625 / 48 per half hour: Ia is reached on the fourth step.
	assert.Zero(t, series.CumulativeExcess[2])
	assert.Positive(t, series.CumulativeExcess[3])
}

func TestRunoff_EqualDepthAndAbstractionIsAllZero(t *testing.T) {
	interval := 0.5
	axis := mustAxis(t, interval)
	e := Event{Name: testEvent, DepthMm: 5}

	series := Runoff(e.DepthMm, 5, 63.5, interval, IntensityAt(e, axis))

	zeros := make([]float64, len(axis))
	assert.Equal(t, zeros, series.Incremental)
	assert.Equal(t, zeros, series.CumulativeRunoff)
	assert.InDelta(t, 5.0, floats.Sum(series.Rainfall), 1e-9)
}

func TestRunoff_IncrementsAreDifferences(t *testing.T) {
	interval := 0.25
	axis := mustAxis(t, interval)
	e := Event{Name: testEvent, DepthMm: 80}

	series := Runoff(e.DepthMm, 2, 40, interval, IntensityAt(e, axis))

	assert.Equal(t, series.CumulativeRunoff[0], series.Incremental[0])
	for i := 1; i < len(axis); i++ {
		assert.InDelta(t, series.CumulativeRunoff[i]-series.CumulativeRunoff[i-1], series.Incremental[i], 1e-12)
		assert.GreaterOrEqual(t, series.Incremental[i], 0.0)
	}
}

func TestRunoff_Empty(t *testing.T) {
	series := Runoff(100, 5, 63.5, 0.5, nil)
	assert.Empty(t, series.Incremental)
}

func TestRunoff_UnalignedGridDriftsFromDesignDepth(t *testing.T) {
	// Intervals that miss the profile band edges give a band's intensity to a
	// whole step, so the day's rainfall over- or undershoots the depth.
	e := Event{Name: testEvent, DepthMm: 100}
	ia, s := 5.0, 63.5

	cases := []struct {
		interval float64
		rainfall float64
	}{
		{0.113, 101.5234375},
		{0.0149, 99.9013958},
		{0.07, 98.896875},
		{0.2399, 102.0824479},
	}

	for _, tc := range cases {
		axis := mustAxis(t, tc.interval)
		series := Runoff(e.DepthMm, ia, s, tc.interval, IntensityAt(e, axis))

		total := series.Cumulative[len(axis)-1]
		assert.InDelta(t, tc.rainfall, total, 1e-6, "interval %v", tc.interval)
		assert.InEpsilon(t, e.DepthMm, total, 0.03, "interval %v", tc.interval)
		// Runoff follows the rainfall actually applied, not the design depth.
		assert.InDelta(t, RunoffDepth24h(total, ia, s), floats.Sum(series.Incremental), 1e-9, "interval %v", tc.interval)
	}

	series := Runoff(e.DepthMm, ia, s, 0.113, IntensityAt(e, mustAxis(t, 0.113)))
	assert.InDelta(t, 58.2213089, floats.Sum(series.Incremental), 1e-6)
	assert.InEpsilon(t, RunoffDepth24h(e.DepthMm, ia, s), floats.Sum(series.Incremental), 0.03)
}
