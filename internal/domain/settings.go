package domain

// Settings are the run-wide numeric controls shared by every surface.
type Settings struct {
	OutputIntervalMinutes float64 `json:"output_interval_minutes" yaml:"output_interval_minutes"`
	Decimals              int     `json:"decimals" yaml:"decimals"`
	CurveConstant         float64 `json:"curve_constant" yaml:"curve_constant"`
	StepFraction          float64 `json:"step_fraction" yaml:"step_fraction"`
}

const (
	maxDecimals          = 10
	minStepFraction      = 0.01
	defaultStepFraction  = 0.1
	defaultCurveConstant = 0.75
)

// DefaultSettings returns a 5-minute output, 3 decimals, the SCS curvilinear
// peak constant and a step of one tenth of Tp.
func DefaultSettings() Settings {
	return Settings{
		OutputIntervalMinutes: 5,
		Decimals:              3,
		CurveConstant:         defaultCurveConstant,
		StepFraction:          defaultStepFraction,
	}
}

// OutputInterval is the output axis interval in hours.
func (s Settings) OutputInterval() float64 {
	return s.OutputIntervalMinutes / 60
}

func (s Settings) Validate() error {
	if !finite(s.OutputIntervalMinutes) || s.OutputIntervalMinutes <= 0 {
		return invalid("output_interval_minutes", s.OutputIntervalMinutes, "must be positive")
	}
	if s.Decimals < 0 || s.Decimals > maxDecimals {
		return invalid("decimals", s.Decimals, "must be between 0 and 10")
	}
	if !finite(s.CurveConstant) || s.CurveConstant <= 0 {
		return invalid("curve_constant", s.CurveConstant, "must be positive")
	}
	if !finite(s.StepFraction) || s.StepFraction < minStepFraction || s.StepFraction > 1 {
		return invalid("step_fraction", s.StepFraction, "must be between 0.01 and 1")
	}
	return nil
}

// SettingsOverride holds the settings a request may set. Nil fields inherit the
// service defaults.
type SettingsOverride struct {
	OutputIntervalMinutes *float64 `json:"output_interval_minutes,omitempty" yaml:"output_interval_minutes,omitempty"`
	Decimals              *int     `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	CurveConstant         *float64 `json:"curve_constant,omitempty" yaml:"curve_constant,omitempty"`
	StepFraction          *float64 `json:"step_fraction,omitempty" yaml:"step_fraction,omitempty"`
}

// Apply returns base with every non-nil override applied.
func (o SettingsOverride) Apply(base Settings) Settings {
	if o.OutputIntervalMinutes != nil {
		base.OutputIntervalMinutes = *o.OutputIntervalMinutes
	}
	if o.Decimals != nil {
		base.Decimals = *o.Decimals
	}
	if o.CurveConstant != nil {
		base.CurveConstant = *o.CurveConstant
	}
	if o.StepFraction != nil {
		base.StepFraction = *o.StepFraction
	}
	return base
}
