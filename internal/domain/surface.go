package domain

// SurfaceResult carries every intermediate of one surface's computation.
type SurfaceResult struct {
	Surface     Surface      `json:"surface"`
	Storage     float64      `json:"storage_mm"`
	TimeToPeak  float64      `json:"tp_hours"`
	Interval    float64      `json:"interval_hours"`
	RunoffDepth float64      `json:"runoff_depth_mm"`
	Axis        TimeAxis     `json:"axis"`
	Runoff      RunoffSeries `json:"runoff"`
	Convolution Convolution  `json:"convolution"`
	Discharge   []float64    `json:"discharge"` // on the output axis
}

// SurfaceHydrograph runs the full chain for one surface and resamples the
// discharge onto output.
func SurfaceHydrograph(s Surface, e Event, cfg Settings, output TimeAxis) (SurfaceResult, error) {
	if err := s.Validate(); err != nil {
		return SurfaceResult{}, err
	}

	storage, err := SoilStorage(s.CurveNumber)
	if err != nil {
		return SurfaceResult{}, err
	}
	tp, err := TimeToPeak(s.Peak, s.CurveNumber)
	if err != nil {
		return SurfaceResult{}, err
	}

	interval := tp * cfg.StepFraction
	axis, err := BuildAxis(interval)
	if err != nil {
		return SurfaceResult{}, err
	}

	q24 := RunoffDepth24h(e.DepthMm, s.InitialAbstraction, storage)
	runoff := Runoff(e.DepthMm, s.InitialAbstraction, storage, interval, IntensityAt(e, axis))
	conv := Convolve(runoff.Incremental, q24, s.AreaHa, tp, cfg)

	discharge, err := Resample(conv.Discharge, axis, output)
	if err != nil {
		return SurfaceResult{}, err
	}

	return SurfaceResult{
		Surface:     s,
		Storage:     storage,
		TimeToPeak:  tp,
		Interval:    interval,
		RunoffDepth: q24,
		Axis:        axis,
		Runoff:      runoff,
		Convolution: conv,
		Discharge:   discharge,
	}, nil
}

// CatchmentHydrograph computes the columns of one catchment for one event, in
// surface order. Any surface failure fails the whole catchment.
func CatchmentHydrograph(c Catchment, e Event, cfg Settings, output TimeAxis) ([]Column, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, withScope(err, c.ID, "", e.Name)
	}

	columns := make([]Column, 0, len(c.Surfaces))
	for _, s := range c.Surfaces {
		res, err := SurfaceHydrograph(s, e, cfg, output)
		if err != nil {
			return nil, withScope(err, c.ID, s.Label(), e.Name)
		}
		columns = append(columns, Column{
			Catchment: c.ID,
			Surface:   s.Kind,
			Header:    c.ID + s.Label(),
			Values:    res.Discharge,
		})
	}
	return columns, nil
}
