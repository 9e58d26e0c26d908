package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
	"github.com/couchcryptid/storm-hydrograph-service/internal/observability"
)

// Engine computes hydrographs for whole run requests. It is safe for
// concurrent use.
type Engine struct {
	defaults domain.Settings
	workers  int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewEngine creates an Engine with the service default settings and a bound on
// the number of catchments computed at once.
func NewEngine(defaults domain.Settings, workers int, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		defaults: defaults,
		workers:  workers,
		logger:   logger,
		metrics:  metrics,
	}
}

// Settings resolves a request's overrides against the engine defaults.
func (e *Engine) Settings(o domain.SettingsOverride) (domain.Settings, error) {
	cfg := o.Apply(e.defaults)
	if err := cfg.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return cfg, nil
}

// Surface computes one surface's hydrograph on the output axis.
func (e *Engine) Surface(s domain.Surface, ev domain.Event, cfg domain.Settings, output domain.TimeAxis) (domain.SurfaceResult, error) {
	res, err := domain.SurfaceHydrograph(s, ev, cfg, output)
	if err != nil {
		return domain.SurfaceResult{}, err
	}
	e.metrics.SurfacesComputed.Inc()
	e.logger.Debug("surface computed",
		"surface", s.Label(),
		"event", ev.Name,
		"tp_hours", res.TimeToPeak,
		"runoff_mm", res.RunoffDepth,
		"internal_points", len(res.Axis),
	)
	return res, nil
}

// Catchment computes the columns of one catchment for one event.
func (e *Engine) Catchment(c domain.Catchment, ev domain.Event, cfg domain.Settings, output domain.TimeAxis) ([]domain.Column, error) {
	columns, err := domain.CatchmentHydrograph(c, ev, cfg, output)
	if err != nil {
		return nil, err
	}
	e.metrics.SurfacesComputed.Add(float64(len(columns)))
	return columns, nil
}

type job struct {
	event     int
	catchment int
}

type outcome struct {
	columns []domain.Column
	err     error
}

// Run computes every catchment for every event of the request.
//
// Request-level problems (no events, bad settings, bad events) fail the run
// with a *domain.ValidationError. A catchment that cannot be computed is
// reported in RunResult.Failures and its columns are left out; the remaining
// catchments are unaffected. Cancellation is checked before each catchment
// starts.
func (e *Engine) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return domain.RunResult{}, err
	}
	cfg, err := e.Settings(req.Settings)
	if err != nil {
		return domain.RunResult{}, err
	}
	output, err := domain.BuildAxis(cfg.OutputInterval())
	if err != nil {
		return domain.RunResult{}, err
	}

	runID := req.ID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := e.logger.With("run_id", runID)

	jobs := make([]job, 0, len(req.Events)*len(req.Catchments))
	for ei := range req.Events {
		for ci := range req.Catchments {
			jobs = append(jobs, job{event: ei, catchment: ci})
		}
	}
	outcomes := make([]outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ev, c := req.Events[j.event], req.Catchments[j.catchment]
			columns, err := e.Catchment(c, ev, cfg, output)
			outcomes[i] = outcome{columns: columns, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.RunResult{}, fmt.Errorf("run %s: %w", runID, err)
	}

	result := domain.RunResult{
		RunID:       runID,
		Fingerprint: req.Fingerprint(cfg),
		Settings:    cfg,
		Hydrographs: make([]domain.Hydrograph, len(req.Events)),
		GeneratedAt: domain.Now(),
	}
	for ei, ev := range req.Events {
		result.Hydrographs[ei] = domain.Hydrograph{Event: ev, Time: output}
	}
	for i, j := range jobs {
		o := outcomes[i]
		ev := req.Events[j.event]
		if o.err != nil {
			id := req.Catchments[j.catchment].ID
			var ve *domain.ValidationError
			if errors.As(o.err, &ve) && ve.Catchment != "" {
				id = ve.Catchment
			}
			result.Failures = append(result.Failures, domain.NewCatchmentError(id, ev.Name, o.err))
			e.metrics.CatchmentFailures.Inc()
			logger.Warn("catchment failed", "catchment", id, "event", ev.Name, "error", o.err)
			continue
		}
		h := &result.Hydrographs[j.event]
		h.Columns = append(h.Columns, o.columns...)
	}

	e.metrics.RunDuration.Observe(time.Since(start).Seconds())
	logger.Info("run complete",
		"events", len(req.Events),
		"catchments", len(req.Catchments),
		"failures", len(result.Failures),
		"duration", time.Since(start),
	)
	return result, nil
}
