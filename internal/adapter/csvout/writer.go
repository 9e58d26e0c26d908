// Package csvout writes hydrograph tables as delimited text, one file per event.
package csvout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

const timeDecimals = 4

// Write encodes h with a header row followed by one row per output time.
// Discharge is formatted with the given number of decimals.
func Write(w io.Writer, h domain.Hydrograph, decimals int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(h.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(h.Columns)+1)
	for i, t := range h.Time {
		record[0] = strconv.FormatFloat(t, 'f', timeDecimals, 64)
		for j, c := range h.Columns {
			record[j+1] = strconv.FormatFloat(c.Values[i], 'f', decimals, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is <prefix>_<event>.csv with path separators in either part
// replaced.
func FileName(prefix, event string) string {
	clean := strings.NewReplacer("/", "-", `\`, "-")
	name := clean.Replace(event) + ".csv"
	if prefix != "" {
		name = clean.Replace(prefix) + "_" + name
	}
	return name
}

// WriteFile writes h to dir and returns the path of the new file.
func WriteFile(dir, prefix string, h domain.Hydrograph, decimals int) (string, error) {
	path := filepath.Join(dir, FileName(prefix, h.Event.Name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, h, decimals); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// WriteResult writes every hydrograph of r to dir, creating dir if needed.
func WriteResult(dir, prefix string, r domain.RunResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(r.Hydrographs))
	for _, h := range r.Hydrographs {
		path, err := WriteFile(dir, prefix, h, r.Settings.Decimals)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
