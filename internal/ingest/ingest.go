// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads register rows from CSV, YAML or JSON files into
// RawRecords keyed by canonical column name.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// headerScanRows is how many leading rows may precede the header.
// Scanned registers often carry a title or table caption first.
const headerScanRows = 5

// ErrNoHeader is returned when no header row is found in a CSV file.
var ErrNoHeader = errors.New("no header row with Khevat or Owner column in first rows")

// canonicalColumns maps lower-cased column names to their canonical form.
var canonicalColumns = func() map[string]string {
	m := make(map[string]string, len(types.InputColumns))
	for _, c := range types.InputColumns {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// Canonical returns the canonical name of an input column header and
// whether it is recognized. Matching ignores case and surrounding space.
func Canonical(header string) (string, bool) {
	c, ok := canonicalColumns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))]
	return c, ok
}

// FormatOf returns the file format implied by path's extension.
func FormatOf(path string) (types.OutputFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return types.FormatCSV, nil
	case ".yaml", ".yml":
		return types.FormatYAML, nil
	case ".json":
		return types.FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported input extension %q (want .csv, .yaml or .json)", filepath.Ext(path))
}

// ReadFile reads records from path, choosing the decoder by extension.
func ReadFile(path string) ([]types.RawRecord, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	recs, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// Read decodes records from r in the given format.
func Read(r io.Reader, format types.OutputFormat) ([]types.RawRecord, error) {
	switch format {
	case types.FormatCSV:
		return ReadCSV(r)
	case types.FormatYAML:
		return ReadYAML(r)
	case types.FormatJSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// ReadCSV reads a CSV register. The header is the first of the leading
// rows that names a Khevat or Owner column; rows above it are skipped.
// Unknown columns are ignored and blank rows are dropped. Row numbers
// count data rows from 1, blank rows included.
func ReadCSV(r io.Reader) ([]types.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}

	headerIdx := -1
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		if isHeader(rows[i]) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrNoHeader
	}

	columns := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		if c, ok := Canonical(h); ok {
			columns[i] = c
		}
	}

	var out []types.RawRecord
	for n, row := range rows[headerIdx+1:] {
		if blank(row) {
			continue
		}
		fields := make(map[string]string)
		for i, v := range row {
			if i < len(columns) && columns[i] != "" {
				fields[columns[i]] = strings.TrimSpace(v)
			}
		}
		out = append(out, types.RawRecord{Row: n + 1, Fields: fields})
	}
	return out, nil
}

// ReadYAML reads a YAML sequence of column-to-value mappings.
func ReadYAML(r io.Reader) ([]types.RawRecord, error) {
	var rows []map[string]any
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	return fromMaps(rows), nil
}

// ReadJSON reads a JSON array of column-to-value objects.
func ReadJSON(r io.Reader) ([]types.RawRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return fromMaps(rows), nil
}

func fromMaps(rows []map[string]any) []types.RawRecord {
	out := make([]types.RawRecord, 0, len(rows))
	for i, m := range rows {
		fields := make(map[string]string, len(m))
		for k, v := range m {
			if c, ok := Canonical(k); ok {
				fields[c] = scalar(v)
			}
		}
		out = append(out, types.RawRecord{Row: i + 1, Fields: fields})
	}
	return out
}

// scalar renders a decoded value as the text a CSV cell would hold.
func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func isHeader(row []string) bool {
	for _, cell := range row {
		lc := strings.ToLower(cell)
		if strings.Contains(lc, "khevat") || strings.Contains(lc, "owner") {
			return true
		}
	}
	return false
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
