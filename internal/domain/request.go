package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RunRequest describes one hydrograph run: the events to compute, the
// catchments to compute them for, and optional settings overrides.
type RunRequest struct {
	ID         string           `json:"id,omitempty" yaml:"id,omitempty"`
	Events     []Event          `json:"events" yaml:"events"`
	Catchments []Catchment      `json:"catchments" yaml:"catchments"`
	Settings   SettingsOverride `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// ParseRunRequest decodes a JSON request.
func ParseRunRequest(data []byte) (RunRequest, error) {
	var req RunRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return RunRequest{}, fmt.Errorf("parse run request: %w", err)
	}
	return req, nil
}

// Validate checks the request-level shape, including unique catchment IDs.
// Catchment contents are validated one at a time during the run so that a bad
// catchment does not sink the others.
func (r RunRequest) Validate() error {
	if len(r.Events) == 0 {
		return invalid("events", 0, "at least one event is required")
	}
	if len(r.Catchments) == 0 {
		return invalid("catchments", 0, "at least one catchment is required")
	}
	seen := make(map[string]bool, len(r.Events))
	for _, e := range r.Events {
		if err := e.Validate(); err != nil {
			return err
		}
		if seen[e.Name] {
			return &ValidationError{Event: e.Name, Field: "event.name", Value: e.Name, Reason: "duplicate event"}
		}
		seen[e.Name] = true
	}
	// Column headers and archive keys are built from the catchment ID.
	ids := make(map[string]bool, len(r.Catchments))
	for _, c := range r.Catchments {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			continue
		}
		if ids[id] {
			return &ValidationError{Catchment: id, Field: "catchment.id", Value: id, Reason: "duplicate catchment"}
		}
		ids[id] = true
	}
	return nil
}

// Fingerprint is a deterministic hash of everything that affects the output:
// events, catchments and the resolved settings. The request ID is excluded, so
// replays of the same input share a fingerprint.
func (r RunRequest) Fingerprint(cfg Settings) string {
	canonical := struct {
		Events     []Event     `json:"events"`
		Catchments []Catchment `json:"catchments"`
		Settings   Settings    `json:"settings"`
	}{r.Events, r.Catchments, cfg}
	data, err := json.Marshal(canonical)
	if err != nil {
		// Only NaN/Inf inputs fail to marshal; fall back to the Go syntax form.
		data = fmt.Appendf(nil, "%#v", canonical)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RunResult is the output of a run: one hydrograph per event plus the
// catchments that could not be computed.
type RunResult struct {
	RunID       string            `json:"run_id"`
	Fingerprint string            `json:"fingerprint"`
	Settings    Settings          `json:"settings"`
	Hydrographs []Hydrograph      `json:"hydrographs"`
	Failures    []*CatchmentError `json:"failures,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Complete reports whether every catchment was computed for every event.
func (r RunResult) Complete() bool {
	return len(r.Failures) == 0
}

// Hydrograph returns the table for the named event.
func (r RunResult) Hydrograph(event string) (Hydrograph, bool) {
	for _, h := range r.Hydrographs {
		if h.Event.Name == event {
			return h, true
		}
	}
	return Hydrograph{}, false
}

// RawMessage is an unprocessed run request read from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
