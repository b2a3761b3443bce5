// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes scored batches and rejection reports as CSV, YAML
// or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/governance-engine/internal/audit"
	"github.com/pdiddy/governance-engine/pkg/types"
)

// Row is the exported form of one GovernanceResult: the input columns
// followed by the engine's decision.
type Row struct {
	Row        int                  `json:"row" yaml:"row"`
	Input      map[string]string    `json:"input" yaml:"input"`
	Identifier string               `json:"agristack_fid" yaml:"agristack_fid"`
	Score      float64              `json:"trust_score" yaml:"trust_score"`
	Channel    types.Channel        `json:"governance_channel" yaml:"governance_channel"`
	Driver     string               `json:"primary_driver" yaml:"primary_driver"`
	Action     string               `json:"action_taken" yaml:"action_taken"`
	Outcomes   []types.RuleOutcome  `json:"outcomes" yaml:"outcomes"`
	Collisions []types.CollisionRef `json:"collisions,omitempty" yaml:"collisions,omitempty"`
	Trace      []string             `json:"audit_trace" yaml:"audit_trace"`
}

// Rows converts results to export rows.
func Rows(results []types.GovernanceResult) []Row {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row{
			Row:        r.Record.Row,
			Input:      r.Record.Raw,
			Identifier: r.Identifier,
			Score:      r.Score,
			Channel:    r.Channel,
			Driver:     r.Driver.String(),
			Action:     r.Action,
			Outcomes:   r.Outcomes,
			Collisions: r.Collisions,
			Trace:      r.Trace,
		}
	}
	return rows
}

// WriteResults writes results to w in format. CSV rows carry the input
// columns present in the batch, in canonical order, followed by the
// result columns; the trace is joined with sep.
func WriteResults(w io.Writer, results []types.GovernanceResult, format types.OutputFormat, sep string) error {
	switch format {
	case types.FormatCSV, "":
		return writeCSV(w, results, sep)
	case types.FormatYAML:
		return writeYAML(w, Rows(results))
	case types.FormatJSON:
		return writeJSON(w, Rows(results))
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// WriteRejections writes the rejection report as CSV.
func WriteRejections(w io.Writer, rejected []types.Rejection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Row", "Field", "Value", "Reason"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range rejected {
		if err := cw.Write([]string{strconv.Itoa(r.Row), r.Field, r.Value, r.Reason}); err != nil {
			return fmt.Errorf("writing rejection row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes to path through a temporary file in the same
// directory, renaming it into place only when write succeeds.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmpFile, err := os.CreateTemp(dir, ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := write(tmpFile)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, results []types.GovernanceResult, sep string) error {
	var inputCols []string
	for _, c := range types.InputColumns {
		for _, r := range results {
			if _, ok := r.Record.Raw[c]; ok {
				inputCols = append(inputCols, c)
				break
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, inputCols...), types.ResultColumns...)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range results {
		rec := make([]string, 0, len(inputCols)+len(types.ResultColumns))
		for _, c := range inputCols {
			rec = append(rec, r.Record.Raw[c])
		}
		rec = append(rec,
			r.Identifier,
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			string(r.Channel),
			r.Driver.String(),
			r.Action,
			audit.Render(r.Trace, sep),
		)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", r.Record.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeYAML(w io.Writer, rows []Row) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

func writeJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
