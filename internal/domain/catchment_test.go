package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatchment_Normalize(t *testing.T) {
	c := Catchment{ID: "  C7 ", Surfaces: []Surface{{}, {Kind: Impervious}, {}}}

	got := c.Normalize()

	assert.Equal(t, "C7", got.ID)
	assert.Equal(t, Pervious, got.Surfaces[0].Kind)
	assert.Equal(t, Impervious, got.Surfaces[1].Kind)
	assert.Equal(t, Impervious2, got.Surfaces[2].Kind)
	assert.Empty(t, c.Surfaces[0].Kind, "input must not be modified")
}

func TestCatchment_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Catchment)
		field   string
		surface string
	}{
		{"missing id", func(c *Catchment) { c.ID = "" }, "catchment.id", ""},
		{"single surface", func(c *Catchment) { c.Surfaces = c.Surfaces[:1] }, "surfaces", ""},
		{"four surfaces", func(c *Catchment) {
			c.Surfaces = append(c.Surfaces, c.Surfaces[1], c.Surfaces[1])
		}, "surfaces", ""},
		{"kinds out of order", func(c *Catchment) {
			c.Surfaces[0], c.Surfaces[1] = c.Surfaces[1], c.Surfaces[0]
		}, "surface.kind", "_Imp"},
		{"zero area", func(c *Catchment) { c.Surfaces[1].AreaHa = 0 }, "area_ha", "_Imp"},
		{"negative abstraction", func(c *Catchment) { c.Surfaces[0].InitialAbstraction = -1 }, "initial_abstraction", "_Per"},
		{"curve number above 100", func(c *Catchment) { c.Surfaces[0].CurveNumber = 101 }, "curve_number", "_Per"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := standardCatchment(testCatchment)
			tc.mutate(&c)

			err := c.Validate()
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tc.field, ve.Field)
			assert.Equal(t, tc.surface, ve.Surface)
		})
	}

	require.NoError(t, standardCatchment(testCatchment).Validate())
}

func TestSurface_Label(t *testing.T) {
	assert.Equal(t, "_Per", Surface{Kind: Pervious}.Label())
	assert.Equal(t, "_Imp2", Surface{Kind: Impervious2}.Label())
	assert.Equal(t, "_Road", Surface{Kind: Impervious, Suffix: "_Road"}.Label())
}

func TestEvent_Validate(t *testing.T) {
	require.NoError(t, Event{Name: testEvent, DepthMm: 0}.Validate())

	var ve *ValidationError
	require.True(t, errors.As(Event{Name: " "}.Validate(), &ve))
	assert.Equal(t, "event.name", ve.Field)

	require.True(t, errors.As(Event{Name: testEvent, DepthMm: -3}.Validate(), &ve))
	assert.Equal(t, "event.depth_mm", ve.Field)
	assert.Equal(t, testEvent, ve.Event)
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	cases := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"zero interval", func(s *Settings) { s.OutputIntervalMinutes = 0 }, "output_interval_minutes"},
		{"negative decimals", func(s *Settings) { s.Decimals = -1 }, "decimals"},
		{"too many decimals", func(s *Settings) { s.Decimals = 11 }, "decimals"},
		{"zero constant", func(s *Settings) { s.CurveConstant = 0 }, "curve_constant"},
		{"tiny step", func(s *Settings) { s.StepFraction = 0.001 }, "step_fraction"},
		{"step above one", func(s *Settings) { s.StepFraction = 1.5 }, "step_fraction"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)

			var ve *ValidationError
			require.True(t, errors.As(s.Validate(), &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestSettingsOverride_Apply(t *testing.T) {
	interval, decimals := 15.0, 2
	o := SettingsOverride{OutputIntervalMinutes: &interval, Decimals: &decimals}

	got := o.Apply(DefaultSettings())

	assert.Equal(t, Settings{
		OutputIntervalMinutes: 15,
		Decimals:              2,
		CurveConstant:         0.75,
		StepFraction:          0.1,
	}, got)
	assert.Equal(t, 0.25, got.OutputInterval())
	assert.Equal(t, DefaultSettings(), SettingsOverride{}.Apply(DefaultSettings()))
}
