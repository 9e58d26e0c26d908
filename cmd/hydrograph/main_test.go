package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WritesOneTablePerEvent(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), options{
		runPath: "../../internal/runfile/testdata/run.yaml",
		outDir:  out,
		workers: 2,
	}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "10yr")
	assert.Contains(t, stdout.String(), "100yrCC")

	f, err := os.Open(filepath.Join(out, "site-a_100yrCC.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Time (h)", "Car_Park_Per", "Car_Park_Imp", "Yard_Per", "Yard_Imp"}, records[0])
	// 15 minute output over 24 hours.
	assert.Len(t, records, 1+97)
	assert.Equal(t, "0.0000", records[1][0])
	assert.Equal(t, "24.0000", records[97][0])
	assert.FileExists(t, filepath.Join(out, "site-a_10yr.csv"))
}

func TestRun_PrefixFlagOverridesRunID(t *testing.T) {
	out := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), options{
		runPath: "../../internal/runfile/testdata/run.yaml",
		outDir:  out,
		prefix:  "scheme",
	}, &stdout, &stderr)

	require.Equal(t, exitOK, code, stderr.String())
	assert.FileExists(t, filepath.Join(out, "scheme_10yr.csv"))
}

func TestRun_MissingRunFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), options{runPath: "nope.yaml", outDir: t.TempDir()}, &stdout, &stderr)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr.String(), "nope.yaml")
}

func TestRun_InvalidRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("events: []\ncatchments: []\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), options{runPath: path, outDir: t.TempDir()}, &stdout, &stderr)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr.String(), "events")
}

func TestRun_PartialResult(t *testing.T) {
	doc := `id: partial
events:
  - {name: 2yr, depth_mm: 40}
catchments:
  - id: Good
    surfaces:
      - {area_ha: 1, curve_number: 75, initial_abstraction: 5, peak: {method: tp, tp: 0.3}}
      - {area_ha: 1, curve_number: 98, initial_abstraction: 0, peak: {method: tp, tp: 0.1}}
  - id: Bad
    surfaces:
      - {area_ha: 1, curve_number: 140, initial_abstraction: 5, peak: {method: tp, tp: 0.3}}
      - {area_ha: 1, curve_number: 98, initial_abstraction: 0, peak: {method: tp, tp: 0.1}}
`
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), options{runPath: path, outDir: out}, &stdout, &stderr)

	assert.Equal(t, exitPartial, code)
	assert.Contains(t, stderr.String(), "Bad")
	assert.FileExists(t, filepath.Join(out, "partial_2yr.csv"))
}
