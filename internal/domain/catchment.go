package domain

import (
	"math"
	"strconv"
	"strings"
)

// SurfaceKind identifies the role of a surface within its catchment.
type SurfaceKind string

const (
	Pervious    SurfaceKind = "pervious"
	Impervious  SurfaceKind = "impervious"
	Impervious2 SurfaceKind = "impervious2"
)

// surfaceOrder is the fixed column order of a catchment's surfaces.
var surfaceOrder = []SurfaceKind{Pervious, Impervious, Impervious2}

var defaultSuffix = map[SurfaceKind]string{
	Pervious:    "_Per",
	Impervious:  "_Imp",
	Impervious2: "_Imp2",
}

// PeakMethod selects how a surface's unit-hydrograph time to peak is obtained.
type PeakMethod string

const (
	PeakFromTp       PeakMethod = "tp"
	PeakFromTc       PeakMethod = "tc"
	PeakFromPhysical PeakMethod = "physical"
)

// PeakInput carries the values for one PeakMethod. Fields belonging to other
// methods are ignored.
type PeakInput struct {
	Method PeakMethod `json:"method" yaml:"method"`

	Tp float64 `json:"tp,omitempty" yaml:"tp,omitempty"` // hours
	Tc float64 `json:"tc,omitempty" yaml:"tc,omitempty"` // hours

	// Physical calculation.
	Channelisation float64 `json:"channelisation,omitempty" yaml:"channelisation,omitempty"` // 0.6 or 0.8
	LengthKm       float64 `json:"length_km,omitempty" yaml:"length_km,omitempty"`
	Slope          float64 `json:"slope,omitempty" yaml:"slope,omitempty"` // m/m
}

// Surface is a pervious or impervious part of a catchment.
type Surface struct {
	Kind               SurfaceKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Suffix             string      `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	AreaHa             float64     `json:"area_ha" yaml:"area_ha"`
	CurveNumber        float64     `json:"curve_number" yaml:"curve_number"`
	InitialAbstraction float64     `json:"initial_abstraction" yaml:"initial_abstraction"` // mm
	Peak               PeakInput   `json:"peak" yaml:"peak"`
}

// Label is the column suffix for the surface, falling back to a per-kind default.
func (s Surface) Label() string {
	if s.Suffix != "" {
		return s.Suffix
	}
	return defaultSuffix[s.Kind]
}

// Catchment groups the surfaces that share one identifier in the output table.
type Catchment struct {
	ID       string    `json:"id" yaml:"id"`
	Surfaces []Surface `json:"surfaces" yaml:"surfaces"`
}

// Normalize assigns positional kinds to surfaces that do not declare one.
func (c Catchment) Normalize() Catchment {
	out := Catchment{ID: strings.TrimSpace(c.ID), Surfaces: make([]Surface, len(c.Surfaces))}
	for i, s := range c.Surfaces {
		if s.Kind == "" && i < len(surfaceOrder) {
			s.Kind = surfaceOrder[i]
		}
		out.Surfaces[i] = s
	}
	return out
}

// Validate checks the catchment layout and every surface. Call it on a
// normalized catchment.
func (c Catchment) Validate() error {
	if c.ID == "" {
		return invalid("catchment.id", nil, "must not be empty")
	}
	if n := len(c.Surfaces); n < 2 || n > 3 {
		return withScope(invalid("surfaces", n, "a catchment has 2 or 3 surfaces"), c.ID, "", "")
	}
	for i, s := range c.Surfaces {
		if s.Kind != surfaceOrder[i] {
			return withScope(invalid("surface.kind", string(s.Kind),
				"expected "+string(surfaceOrder[i])+" at position "+strconv.Itoa(i+1)), c.ID, s.Label(), "")
		}
		if err := s.Validate(); err != nil {
			return withScope(err, c.ID, s.Label(), "")
		}
	}
	return nil
}

// Validate rejects input that would otherwise surface as NaN, Inf, a division
// by zero, or a non-terminating grid.
func (s Surface) Validate() error {
	if !finite(s.AreaHa) || s.AreaHa <= 0 {
		return invalid("area_ha", s.AreaHa, "must be positive")
	}
	if !finite(s.CurveNumber) || s.CurveNumber <= 0 || s.CurveNumber > 100 {
		return invalid("curve_number", s.CurveNumber, "must be in (0, 100]")
	}
	if !finite(s.InitialAbstraction) || s.InitialAbstraction < 0 {
		return invalid("initial_abstraction", s.InitialAbstraction, "must not be negative")
	}
	return s.Peak.Validate()
}

// Validate checks the fields used by the selected method.
func (p PeakInput) Validate() error {
	switch p.Method {
	case PeakFromTp:
		if !finite(p.Tp) || p.Tp <= 0 {
			return invalid("peak.tp", p.Tp, "must be positive")
		}
	case PeakFromTc:
		if !finite(p.Tc) || p.Tc <= 0 {
			return invalid("peak.tc", p.Tc, "must be positive")
		}
	case PeakFromPhysical:
		if p.Channelisation != 0.6 && p.Channelisation != 0.8 {
			return invalid("peak.channelisation", p.Channelisation, "must be 0.6 or 0.8")
		}
		if !finite(p.LengthKm) || p.LengthKm <= 0 {
			return invalid("peak.length_km", p.LengthKm, "must be positive")
		}
		if !finite(p.Slope) || p.Slope <= 0 {
			return invalid("peak.slope", p.Slope, "must be positive")
		}
	default:
		return invalid("peak.method", string(p.Method), "must be one of tp, tc, physical")
	}
	return nil
}

// Event is a named design storm.
type Event struct {
	Name    string  `json:"name" yaml:"name"`
	DepthMm float64 `json:"depth_mm" yaml:"depth_mm"`
}

const climateChangeMarker = "CC"

// ClimateChange reports whether the event uses the climate-change profile.
func (e Event) ClimateChange() bool {
	return strings.Contains(e.Name, climateChangeMarker)
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("event.name", nil, "must not be empty")
	}
	if !finite(e.DepthMm) || e.DepthMm < 0 {
		return &ValidationError{Event: e.Name, Field: "event.depth_mm", Value: e.DepthMm, Reason: "must not be negative"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
