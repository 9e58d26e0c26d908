// Package postgres archives run results for later retrieval and audit.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS hydrograph_runs (
	run_id       TEXT        NOT NULL,
	event        TEXT        NOT NULL,
	depth_mm     DOUBLE PRECISION NOT NULL,
	fingerprint  TEXT        NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	settings     JSONB       NOT NULL,
	headers      TEXT[]      NOT NULL,
	series       JSONB       NOT NULL,
	peak_column  TEXT,
	peak_m3s     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, event)
);
CREATE INDEX IF NOT EXISTS hydrograph_runs_fingerprint_idx ON hydrograph_runs (fingerprint);
CREATE TABLE IF NOT EXISTS hydrograph_failures (
	run_id    TEXT NOT NULL,
	event     TEXT NOT NULL,
	catchment TEXT NOT NULL,
	reason    TEXT NOT NULL,
	PRIMARY KEY (run_id, event, catchment)
);`

const upsertRun = `
INSERT INTO hydrograph_runs
	(run_id, event, depth_mm, fingerprint, generated_at, settings, headers, series, peak_column, peak_m3s)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (run_id, event) DO UPDATE SET
	depth_mm = EXCLUDED.depth_mm,
	fingerprint = EXCLUDED.fingerprint,
	generated_at = EXCLUDED.generated_at,
	settings = EXCLUDED.settings,
	headers = EXCLUDED.headers,
	series = EXCLUDED.series,
	peak_column = EXCLUDED.peak_column,
	peak_m3s = EXCLUDED.peak_m3s`

const upsertFailure = `
INSERT INTO hydrograph_failures (run_id, event, catchment, reason)
VALUES ($1, $2, $3, $4)
ON CONFLICT (run_id, event, catchment) DO UPDATE SET reason = EXCLUDED.reason`

// Archive writes run results to Postgres. It implements pipeline.BatchLoader.
// Writes are upserts, so reloading a batch after a partial failure is safe.
type Archive struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the database at dsn and creates the tables if needed.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Archive, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a := &Archive{pool: pool, logger: logger}
	if err := a.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// Migrate creates the archive tables.
func (a *Archive) Migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate archive schema: %w", err)
	}
	return nil
}

// LoadBatch upserts every hydrograph and failure of the results in one
// transaction.
func (a *Archive) LoadBatch(ctx context.Context, results []domain.RunResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range results {
		rows, err := runRows(r)
		if err != nil {
			return err
		}
		for _, row := range rows {
			batch.Queue(upsertRun, row.args()...)
		}
		for _, f := range r.Failures {
			batch.Queue(upsertFailure, r.RunID, f.Event, f.Catchment, f.Reason)
		}
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("archive results: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	a.logger.Debug("results archived", "runs", len(results), "statements", batch.Len())
	return nil
}

// Close releases the connection pool.
func (a *Archive) Close() {
	a.pool.Close()
}

type runRow struct {
	RunID       string
	Event       string
	DepthMm     float64
	Fingerprint string
	GeneratedAt time.Time
	Settings    []byte
	Headers     []string
	Rows        []byte
	PeakColumn  *string
	PeakM3s     float64
}

func (r runRow) args() []any {
	return []any{r.RunID, r.Event, r.DepthMm, r.Fingerprint, r.GeneratedAt,
		r.Settings, r.Headers, r.Rows, r.PeakColumn, r.PeakM3s}
}

// runRows flattens a result into one archive row per event.
func runRows(r domain.RunResult) ([]runRow, error) {
	settings, err := json.Marshal(r.Settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}

	out := make([]runRow, 0, len(r.Hydrographs))
	for _, h := range r.Hydrographs {
		table, err := json.Marshal(h.Rows())
		if err != nil {
			return nil, fmt.Errorf("encode %s table: %w", h.Event.Name, err)
		}
		row := runRow{
			RunID:       r.RunID,
			Event:       h.Event.Name,
			DepthMm:     h.Event.DepthMm,
			Fingerprint: r.Fingerprint,
			GeneratedAt: r.GeneratedAt,
			Settings:    settings,
			Headers:     h.Headers(),
			Rows:        table,
		}
		if header, peak := h.Peak(); header != "" {
			row.PeakColumn, row.PeakM3s = &header, peak
		}
		out = append(out, row)
	}
	return out, nil
}
