// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/governance-engine/internal/export"
	"github.com/pdiddy/governance-engine/pkg/types"
)

// RunExport is a persisted run with its results and rejections.
type RunExport struct {
	Run        Run               `json:"run" yaml:"run"`
	Results    []export.Row      `json:"results" yaml:"results"`
	Rejections []types.Rejection `json:"rejections,omitempty" yaml:"rejections,omitempty"`
}

// ExportYAML writes a stored run to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, runID string, w io.Writer) error {
	e, err := s.exportRun(ctx, runID)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes a stored run to w as JSON.
func (s *Store) ExportJSON(ctx context.Context, runID string, w io.Writer) error {
	e, err := s.exportRun(ctx, runID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (s *Store) exportRun(ctx context.Context, runID string) (RunExport, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return RunExport{}, err
	}
	results, err := s.Results(ctx, run.ID)
	if err != nil {
		return RunExport{}, fmt.Errorf("querying for export: %w", err)
	}
	rejections, err := s.Rejections(ctx, run.ID)
	if err != nil {
		return RunExport{}, fmt.Errorf("querying for export: %w", err)
	}
	return RunExport{Run: run, Results: results, Rejections: rejections}, nil
}
