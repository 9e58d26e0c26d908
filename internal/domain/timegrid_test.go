package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAxis_HalfHour(t *testing.T) {
	axis, err := BuildAxis(0.5)
	require.NoError(t, err)

	require.Len(t, axis, 49)
	assert.Equal(t, 0.0, axis[0])
	assert.Equal(t, 0.5, axis[1])
	assert.Equal(t, 12.0, axis[24])
	assert.Equal(t, 24.0, axis[48])
}

func TestBuildAxis_Properties(t *testing.T) {
	intervals := []float64{0.002, 0.011, 1.0 / 12, 1.0 / 6, 0.25, 0.7, 1, 5, 30}

	for _, interval := range intervals {
		axis, err := BuildAxis(interval)
		require.NoError(t, err, "interval %v", interval)

		assert.Equal(t, 0.0, axis[0])
		for i := 1; i < len(axis); i++ {
			require.Greater(t, axis[i], axis[i-1], "interval %v not increasing at %d", interval, i)
		}
		last := axis[len(axis)-1]
		assert.GreaterOrEqual(t, last, axisEnd, "interval %v", interval)
		// Rounding to 4 decimals may move the last value by up to 5e-5.
		assert.Less(t, last, axisEnd+interval+1e-4, "interval %v", interval)
	}
}

func TestBuildAxis_LargeInterval(t *testing.T) {
	axis, err := BuildAxis(30)
	require.NoError(t, err)
	assert.Equal(t, TimeAxis{0, 30}, axis)
}

func TestBuildAxis_RoundsToFourDecimals(t *testing.T) {
	axis, err := BuildAxis(1.0 / 6)
	require.NoError(t, err)

	assert.Len(t, axis, 145)
	assert.Equal(t, 0.1667, axis[1])
	assert.Equal(t, 11.6667, axis[70])
	assert.Equal(t, 11.8333, axis[71])
	assert.Equal(t, 24.0, axis[144])
}

func TestBuildAxis_Rejects(t *testing.T) {
	cases := []struct {
		name     string
		interval float64
	}{
		{"zero", 0},
		{"negative", -0.5},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
		{"too fine", 1e-4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildAxis(tc.interval)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "interval_hours", ve.Field)
		})
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.235, roundTo(1.2346, 3))
	assert.Equal(t, -1.235, roundTo(-1.2346, 3))
	assert.Equal(t, 2.0, roundTo(1.5, 0))
	assert.Equal(t, 0.1667, roundTo(1.0/6, 4))
}
