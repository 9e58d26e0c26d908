package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
	"github.com/couchcryptid/storm-hydrograph-service/internal/observability"
)

// BatchExtractor reads up to batchSize run request messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Transformer computes the run result for one request message.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawMessage) (domain.RunResult, error)
}

// BatchLoader writes run results to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, results []domain.RunResult) error
}

const (
	minRetryDelay = 200 * time.Millisecond
	maxRetryDelay = 5 * time.Second
)

// Pipeline consumes run requests, computes them and publishes the results.
// A request's offset is committed only once its result has been published, or
// when the request itself is unusable.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once a run result has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no run result published yet")
	}
	return nil
}

// Run consumes request batches until the context is cancelled. Extract and
// publish failures are retried with exponential backoff.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newRetryDelay(minRetryDelay, maxRetryDelay)
	for ctx.Err() == nil {
		err := p.runBatch(ctx)
		switch {
		case ctx.Err() != nil:
		case err != nil:
			p.logger.Error("batch failed", "error", err, "retry_in", retry.current)
			retry.wait(ctx)
		default:
			retry.reset()
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runBatch handles one batch of requests. A non-nil error means nothing from
// the batch was published and the batch should be retried.
func (p *Pipeline) runBatch(ctx context.Context) error {
	start := time.Now()

	requests, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(requests)))
	p.metrics.BatchSize.Observe(float64(len(requests)))

	results, sources := p.computeRuns(ctx, requests)
	if len(results) == 0 {
		return nil
	}
	if err := p.publish(ctx, results, sources); err != nil {
		return err
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return nil
}

// computeRuns transforms every request in order. Unusable requests are
// committed and dropped. On shutdown the remaining requests are left
// uncommitted so they are replayed after restart.
func (p *Pipeline) computeRuns(ctx context.Context, requests []domain.RawMessage) ([]domain.RunResult, []domain.RawMessage) {
	results := make([]domain.RunResult, 0, len(requests))
	sources := make([]domain.RawMessage, 0, len(requests))

	for _, raw := range requests {
		result, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil
			}
			p.logger.Warn("run request failed, skipping message",
				"error", err,
				"key", string(raw.Key),
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		results = append(results, result)
		sources = append(sources, raw)
	}
	return results, sources
}

// publish loads the results and then commits the requests they came from.
func (p *Pipeline) publish(ctx context.Context, results []domain.RunResult, sources []domain.RawMessage) error {
	if err := p.loader.LoadBatch(ctx, results); err != nil {
		return err
	}
	p.metrics.MessagesProduced.Add(float64(len(results)))

	for i, result := range results {
		if !result.Complete() {
			p.metrics.PartialRunsPublished.Inc()
			p.logger.Warn("run published with catchment failures",
				"run_id", result.RunID,
				"failures", len(result.Failures),
				"offset", sources[i].Offset,
			)
		}
		p.commit(ctx, sources[i])
	}
	return nil
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawMessage) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retryDelay is a doubling delay between floor and ceiling.
type retryDelay struct {
	current, floor, ceiling time.Duration
}

func newRetryDelay(floor, ceiling time.Duration) *retryDelay {
	return &retryDelay{current: floor, floor: floor, ceiling: ceiling}
}

func (r *retryDelay) reset() { r.current = r.floor }

// wait sleeps for the current delay, then doubles it. It returns early when ctx
// is cancelled.
func (r *retryDelay) wait(ctx context.Context) {
	timer := time.NewTimer(r.current)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	r.current = min(r.current*2, r.ceiling)
}
