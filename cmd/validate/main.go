// Command validate performs integrity checks on a run file before it is
// submitted to the service: request and catchment validation, runoff mass
// balance, hydrograph volume against runoff volume, and a CSV round trip of
// the computed tables.
//
// Usage:
//
//	go run ./cmd/validate -run site.yaml -tolerance 0.05
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/storm-hydrograph-service/internal/adapter/csvout"
	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
	"github.com/couchcryptid/storm-hydrograph-service/internal/observability"
	"github.com/couchcryptid/storm-hydrograph-service/internal/pipeline"
	"github.com/couchcryptid/storm-hydrograph-service/internal/runfile"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	runPath := flag.String("run", "", "path to a YAML or JSON run file")
	tolerance := flag.Float64("tolerance", 0.05, "allowed relative gap for depth and volume checks")
	flag.Parse()

	if *runPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*runPath, *tolerance, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(runPath string, tolerance float64, out io.Writer) int {
	// Fixed clock so repeated validations of one file print identical output.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Fprintln(out, "=== Hydrograph Run Validation ===")
	fmt.Fprintln(out)

	req, err := runfile.Load(runPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	cfg := req.Settings.Apply(domain.DefaultSettings())
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "FATAL: settings: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	engine := pipeline.NewEngine(domain.DefaultSettings(), 4, logger, metrics)
	output, err := domain.BuildAxis(cfg.OutputInterval())
	if err != nil {
		fmt.Fprintf(out, "FATAL: output axis: %v\n", err)
		return 1
	}

	schema := validateSchema(req)
	phases := []*phase{
		schema,
		validateRunoffMass(engine, req, cfg, output, tolerance),
		validateVolume(engine, req, cfg, output, tolerance),
	}
	if schema.passed() {
		phases = append(phases, validateCSVRoundTrip(engine, req))
	}

	// ── Report results ──
	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Run: %d events, %d catchments, %g minute output\n",
		len(req.Events), len(req.Catchments), cfg.OutputIntervalMinutes)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phase 1: request shape ──

func validateSchema(req domain.RunRequest) *phase {
	p := &phase{name: "Phase 1: Request and catchment validation"}
	if err := req.Validate(); err != nil {
		p.errorf("request: %v", err)
	}
	for i, c := range req.Catchments {
		if err := c.Normalize().Validate(); err != nil {
			p.errorf("catchment %d: %v", i+1, err)
		}
	}
	return p
}

// eachSurface calls fn for every valid surface of every catchment for every
// event. Invalid catchments are reported by the schema phase.
func eachSurface(req domain.RunRequest, fn func(ev domain.Event, c domain.Catchment, s domain.Surface)) {
	for _, ev := range req.Events {
		if ev.Validate() != nil {
			continue
		}
		for _, c := range req.Catchments {
			c = c.Normalize()
			if c.Validate() != nil {
				continue
			}
			for _, s := range c.Surfaces {
				fn(ev, c, s)
			}
		}
	}
}

// ── Phase 2: runoff mass balance ──

// Grids that do not land on the profile band edges drift from the design depth,
// so depths are compared relative to their expected value.
func validateRunoffMass(engine *pipeline.Engine, req domain.RunRequest, cfg domain.Settings, output domain.TimeAxis, tolerance float64) *phase {
	p := &phase{name: "Phase 2: Runoff mass balance"}
	eachSurface(req, func(ev domain.Event, c domain.Catchment, s domain.Surface) {
		label := c.ID + s.Label() + " " + ev.Name
		res, err := engine.Surface(s, ev, cfg, output)
		if err != nil {
			p.errorf("%s: %v", label, err)
			return
		}
		rain := res.Runoff.Cumulative
		if n := len(rain); n == 0 || relGap(rain[n-1], ev.DepthMm) > tolerance {
			p.errorf("%s: cumulative rainfall does not reach the event depth %.3f mm", label, ev.DepthMm)
		}
		got := floats.Sum(res.Runoff.Incremental)
		if relGap(got, res.RunoffDepth) > tolerance {
			p.errorf("%s: runoff sums to %.4f mm, expected %.4f mm", label, got, res.RunoffDepth)
		}
		for i, d := range res.Runoff.Incremental {
			if d < 0 {
				p.errorf("%s: negative runoff increment %.6f at step %d", label, d, i)
				break
			}
		}
	})
	return p
}

// ── Phase 3: hydrograph volume ──

func validateVolume(engine *pipeline.Engine, req domain.RunRequest, cfg domain.Settings, output domain.TimeAxis, tolerance float64) *phase {
	p := &phase{name: "Phase 3: Hydrograph volume vs runoff volume"}
	eachSurface(req, func(ev domain.Event, c domain.Catchment, s domain.Surface) {
		label := c.ID + s.Label() + " " + ev.Name
		res, err := engine.Surface(s, ev, cfg, output)
		if err != nil {
			// Reported by phase 2.
			return
		}
		// mm over ha to m3.
		runoff := res.RunoffDepth * s.AreaHa * 10
		if runoff == 0 {
			if peak := floats.Max(res.Convolution.Discharge); peak != 0 {
				p.errorf("%s: no runoff but a peak of %.4f m3/s", label, peak)
			}
			return
		}
		volume := floats.Sum(res.Convolution.Discharge) * res.Interval * 3600
		if gap := relGap(volume, runoff); gap > tolerance {
			p.errorf("%s: hydrograph volume %.1f m3 differs from runoff volume %.1f m3 by %.1f%%",
				label, volume, runoff, gap*100)
		}
	})
	return p
}

// ── Phase 4: CSV round trip ──

func validateCSVRoundTrip(engine *pipeline.Engine, req domain.RunRequest) *phase {
	p := &phase{name: "Phase 4: CSV round trip"}

	result, err := engine.Run(context.Background(), req)
	if err != nil {
		p.errorf("run: %v", err)
		return p
	}
	for _, f := range result.Failures {
		p.errorf("run: %v", f)
	}

	dir, err := os.MkdirTemp("", "hydrograph-validate-")
	if err != nil {
		p.errorf("temp dir: %v", err)
		return p
	}
	defer os.RemoveAll(dir)

	paths, err := csvout.WriteResult(dir, "validate", result)
	if err != nil {
		p.errorf("write: %v", err)
		return p
	}

	// Half a unit in the last printed place.
	slack := 0.5*math.Pow(10, -float64(result.Settings.Decimals)) + 1e-12
	for i, h := range result.Hydrographs {
		records, err := readCSV(paths[i])
		if err != nil {
			p.errorf("%s: %v", h.Event.Name, err)
			continue
		}
		checkTable(p, h, records, slack)
	}
	return p
}

func checkTable(p *phase, h domain.Hydrograph, records [][]string, slack float64) {
	headers := h.Headers()
	if len(records) != len(h.Time)+1 {
		p.errorf("%s: %d rows, expected %d", h.Event.Name, len(records)-1, len(h.Time))
		return
	}
	for j, name := range headers {
		if j >= len(records[0]) || records[0][j] != name {
			p.errorf("%s: header %d is not %q", h.Event.Name, j, name)
			return
		}
	}
	for i, row := range h.Rows() {
		for j, want := range row {
			got, err := strconv.ParseFloat(records[i+1][j], 64)
			if err != nil {
				p.errorf("%s: row %d column %s: %v", h.Event.Name, i+1, headers[j], err)
				return
			}
			if math.Abs(got-want) > slack {
				p.errorf("%s: row %d column %s reads %g, computed %g", h.Event.Name, i+1, headers[j], got, want)
				return
			}
		}
	}
}

// relGap is |got-want|/want, or the absolute gap when want is zero.
func relGap(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return csv.NewReader(f).ReadAll()
}
