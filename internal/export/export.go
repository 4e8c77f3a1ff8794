// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes metadata records to CSV, JSON, or YAML with
// timestamped filenames.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmeta/pkg/types"
)

// filenamePrefix is the fixed stem of every export file.
const filenamePrefix = "publication_metadata_"

// timestampLayout renders e.g. 20260831_142305.
const timestampLayout = "20060102_150405"

// Filename returns the export filename for the given format and time,
// e.g. "publication_metadata_20260831_142305.csv".
func Filename(format types.ExportFormat, t time.Time) string {
	return filenamePrefix + t.Format(timestampLayout) + "." + string(format)
}

// CSV renders records as CSV: a header row in the fixed column order, one
// data row per record. Field values containing the delimiter, quote, or a
// newline get standard CSV quoting; values are not otherwise transformed.
func CSV(records []types.MetadataRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(types.RecordFields()); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(r.Values()); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// JSON renders records as indented JSON.
func JSON(records []types.MetadataRecord) ([]byte, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// YAML renders records as YAML.
func YAML(records []types.MetadataRecord) ([]byte, error) {
	data, err := yaml.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return data, nil
}

// Render dispatches on format. An unknown format is an error.
func Render(records []types.MetadataRecord, format types.ExportFormat) ([]byte, error) {
	switch format {
	case types.ExportCSV:
		return CSV(records)
	case types.ExportJSON:
		return JSON(records)
	case types.ExportYAML:
		return YAML(records)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// ToCSV returns the timestamped filename and CSV content for records.
func ToCSV(records []types.MetadataRecord) (string, []byte, error) {
	content, err := CSV(records)
	if err != nil {
		return "", nil, err
	}
	return Filename(types.ExportCSV, time.Now()), content, nil
}

// Write renders records per cfg.Format and writes them to a timestamped
// file under cfg.OutputDir, creating the directory if needed. It returns
// the written path.
func Write(records []types.MetadataRecord, cfg types.ExportConfig) (string, error) {
	format := cfg.Format
	if format == "" {
		format = types.ExportCSV
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "output"
	}

	content, err := Render(records, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, Filename(format, time.Now()))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}
