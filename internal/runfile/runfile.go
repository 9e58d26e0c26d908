// Package runfile reads and writes run requests as YAML documents. JSON is a
// subset of YAML, so JSON request files load through the same path.
package runfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

// Decode reads one run request. Unknown keys are rejected so that a misspelt
// field does not silently fall back to a default.
func Decode(r io.Reader) (domain.RunRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var req domain.RunRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RunRequest{}, errors.New("decode run file: empty document")
		}
		return domain.RunRequest{}, fmt.Errorf("decode run file: %w", err)
	}
	return req, nil
}

// Load reads the run request at path.
func Load(path string) (domain.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RunRequest{}, fmt.Errorf("read run file: %w", err)
	}
	req, err := Decode(bytes.NewReader(data))
	if err != nil {
		return domain.RunRequest{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Encode writes req as YAML.
func Encode(w io.Writer, req domain.RunRequest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(req); err != nil {
		return fmt.Errorf("encode run file: %w", err)
	}
	return enc.Close()
}

// Save writes req to path, replacing any existing file.
func Save(path string, req domain.RunRequest) error {
	var buf bytes.Buffer
	if err := Encode(&buf, req); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return nil
}
