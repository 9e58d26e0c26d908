package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
	"github.com/couchcryptid/storm-hydrograph-service/internal/observability"
)

// Sources label where a run request came from.
const (
	SourceKafka = "kafka"
	SourceHTTP  = "http"
	SourceCLI   = "cli"
)

// ResultCache stores run results by request fingerprint.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (domain.RunResult, bool, error)
	Put(ctx context.Context, fingerprint string, result domain.RunResult) error
}

// HydrographTransformer implements Transformer by running the engine, with an
// optional result cache in front of it.
type HydrographTransformer struct {
	engine  *Engine
	cache   ResultCache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a HydrographTransformer. Pass a nil cache to compute
// every request.
func NewTransformer(engine *Engine, cache ResultCache, logger *slog.Logger, metrics *observability.Metrics) *HydrographTransformer {
	return &HydrographTransformer{
		engine:  engine,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Transform parses a run request message and computes it.
func (t *HydrographTransformer) Transform(ctx context.Context, raw domain.RawMessage) (domain.RunResult, error) {
	req, err := domain.ParseRunRequest(raw.Value)
	if err != nil {
		t.metrics.Runs.WithLabelValues(SourceKafka, "invalid").Inc()
		return domain.RunResult{}, err
	}
	if req.ID == "" && len(raw.Key) > 0 {
		req.ID = string(raw.Key)
	}
	return t.Compute(ctx, req, SourceKafka)
}

// Compute returns the result for req, from the cache when an identical request
// has been computed before. Cached results carry the new request's run ID.
func (t *HydrographTransformer) Compute(ctx context.Context, req domain.RunRequest, source string) (domain.RunResult, error) {
	cfg, err := t.engine.Settings(req.Settings)
	if err != nil {
		t.metrics.Runs.WithLabelValues(source, "invalid").Inc()
		return domain.RunResult{}, err
	}
	fingerprint := req.Fingerprint(cfg)

	if cached, ok := t.lookup(ctx, fingerprint); ok {
		if req.ID != "" {
			cached.RunID = req.ID
		}
		t.metrics.Runs.WithLabelValues(source, outcomeOf(cached)).Inc()
		return cached, nil
	}

	result, err := t.engine.Run(ctx, req)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			t.metrics.Runs.WithLabelValues(source, "invalid").Inc()
		} else {
			t.metrics.Runs.WithLabelValues(source, "error").Inc()
		}
		return domain.RunResult{}, err
	}
	t.metrics.Runs.WithLabelValues(source, outcomeOf(result)).Inc()

	if t.cache != nil {
		if err := t.cache.Put(ctx, fingerprint, result); err != nil {
			t.logger.Warn("result cache store failed", "error", err, "fingerprint", fingerprint)
		}
	}
	return result, nil
}

func (t *HydrographTransformer) lookup(ctx context.Context, fingerprint string) (domain.RunResult, bool) {
	if t.cache == nil {
		return domain.RunResult{}, false
	}
	cached, ok, err := t.cache.Get(ctx, fingerprint)
	switch {
	case err != nil:
		t.metrics.CacheLookups.WithLabelValues("error").Inc()
		t.logger.Warn("result cache lookup failed", "error", err, "fingerprint", fingerprint)
		return domain.RunResult{}, false
	case !ok:
		t.metrics.CacheLookups.WithLabelValues("miss").Inc()
		return domain.RunResult{}, false
	}
	t.metrics.CacheLookups.WithLabelValues("hit").Inc()
	return cached, true
}

func outcomeOf(r domain.RunResult) string {
	if r.Complete() {
		return "complete"
	}
	return "partial"
}
