package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToPeak(t *testing.T) {
	cases := []struct {
		name string
		in   PeakInput
		cn   float64
		want float64
	}{
		{"direct tp", PeakInput{Method: PeakFromTp, Tp: 0.5}, 80, 0.5},
		{"direct tc", PeakInput{Method: PeakFromTc, Tc: 0.9}, 80, 0.6},
		{
			"physical",
			PeakInput{Method: PeakFromPhysical, Channelisation: 0.6, LengthKm: 1, Slope: 0.05},
			80, 0.17193,
		},
		{
			"physical partially channelised",
			PeakInput{Method: PeakFromPhysical, Channelisation: 0.8, LengthKm: 1, Slope: 0.05},
			80, 0.22924,
		},
		{
			"physical floored",
			PeakInput{Method: PeakFromPhysical, Channelisation: 0.6, LengthKm: 0.1, Slope: 0.5},
			98, MinTimeToPeak,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TimeToPeak(tc.in, tc.cn)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-4)
		})
	}
}

func TestTimeToPeak_PhysicalNeverBelowFloor(t *testing.T) {
	for _, cn := range []float64{30, 60, 90, 99, 100} {
		for _, length := range []float64{0.01, 0.1, 1, 10} {
			tp, err := TimeToPeak(PeakInput{Method: PeakFromPhysical, Channelisation: 0.6, LengthKm: length, Slope: 0.9}, cn)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, tp, MinTimeToPeak, "cn=%v length=%v", cn, length)
		}
	}
}

func TestTimeToPeak_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		in    PeakInput
		field string
	}{
		{"zero tp", PeakInput{Method: PeakFromTp}, "peak.tp"},
		{"negative tc", PeakInput{Method: PeakFromTc, Tc: -1}, "peak.tc"},
		{"bad channelisation", PeakInput{Method: PeakFromPhysical, Channelisation: 0.7, LengthKm: 1, Slope: 0.1}, "peak.channelisation"},
		{"zero length", PeakInput{Method: PeakFromPhysical, Channelisation: 0.6, Slope: 0.1}, "peak.length_km"},
		{"flat slope", PeakInput{Method: PeakFromPhysical, Channelisation: 0.6, LengthKm: 1}, "peak.slope"},
		{"unknown method", PeakInput{Method: "guess", Tp: 1}, "peak.method"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TimeToPeak(tc.in, 80)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}
