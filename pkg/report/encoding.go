/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: encoding.go
Description: Report serialisation in JSON, YAML and CBOR, plus timestamped report files
in an output directory.
*/

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format is a report serialisation format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ErrUnknownFormat is returned for unsupported report formats
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parses a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	return "." + string(f)
}

// cborEncMode sorts map keys deterministically and keeps sub-second timestamps
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort: cbor.SortCoreDeterministic,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Encode serialises a report
func Encode(r *Report, f Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatJSON:
		data, err = json.MarshalIndent(r, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(r)
	case FormatCBOR:
		data, err = cborEncMode.Marshal(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s report: %w", f, err)
	}
	return data, nil
}

// Decode parses a report
func Decode(data []byte, f Format) (*Report, error) {
	r := &Report{}
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, r)
	case FormatYAML:
		err = yaml.Unmarshal(data, r)
	case FormatCBOR:
		err = cbor.Unmarshal(data, r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s report: %w", f, err)
	}
	return r, nil
}

// Write encodes a report into dir and returns the file path.
// File names look like 2024-06-11_01-30-00_sample.bin_1a2b3c4d.json.
func Write(dir string, r *Report, f Format) (string, error) {
	data, err := Encode(r, f)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	name := filepath.Base(r.Sample)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "sample"
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s%s", timestamp, name, id, f.Extension()))

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
