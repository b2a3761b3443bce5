// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/governance-engine/internal/export"
	"github.com/pdiddy/governance-engine/internal/identity"
	"github.com/pdiddy/governance-engine/internal/ingest"
	"github.com/pdiddy/governance-engine/internal/metrics"
	"github.com/pdiddy/governance-engine/internal/pipeline"
	"github.com/pdiddy/governance-engine/internal/registry"
	"github.com/pdiddy/governance-engine/pkg/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <input>",
	Short: "Score a land-record register and route each record to a channel",
	Long: `Evaluate reads a register (CSV, YAML or JSON by extension), normalizes
each row, runs the identity, land-category, possession and GIS rules, and
writes every accepted record with its trust score, governance channel,
primary driver, action and audit trace.

Rows that cannot be normalized are rejected and listed on stderr; they are
never scored. With --registry-db the run is persisted, and --seed-registry
reports identifier collisions against earlier runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

// evaluateFlags maps configuration keys to the evaluate flags that
// override them.
var evaluateFlags = map[string]string{
	"engine.green_threshold":                 "green-threshold",
	"engine.gis_tolerance_radius_meters":     "gis-tolerance",
	"engine.fuzzy_match_edit_distance_max":   "fuzzy-max",
	"engine.inheritance_grace_period_months": "grace-months",
	"engine.workers":                         "workers",
	"engine.context.default_village":         "village",
	"engine.context.default_device":          "device",
	"output.path":                            "out",
	"output.format":                          "format",
	"output.rejections_path":                 "rejections",
	"registry.db_path":                       "registry-db",
	"registry.seed":                          "seed-registry",
}

// evaluateSummary is the --json form of the evaluate report.
type evaluateSummary struct {
	Input    string              `json:"input"`
	RunID    string              `json:"run_id,omitempty"`
	Scored   int                 `json:"scored"`
	Counts   types.ChannelCounts `json:"counts"`
	Rejected []types.Rejection   `json:"rejected"`
	Output   string              `json:"output,omitempty"`
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	inputPath := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	raws, err := ingest.ReadFile(inputPath)
	if err != nil {
		return err
	}
	logger.Info("register loaded", "path", inputPath, "rows", len(raws))

	reg := identity.NewRegistry()
	var store *registry.Store
	if cfg.Registry.DBPath != "" {
		store, err = registry.Open(cfg.Registry.DBPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if cfg.Registry.Seed {
			sources, err := store.Sources(ctx)
			if err != nil {
				return err
			}
			reg.Seed(sources)
			logger.Info("registry seeded", "sources", len(sources))
		}
	}

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	var m *metrics.Metrics
	if metricsFile != "" {
		m = metrics.New()
	}

	out, err := pipeline.Run(ctx, raws, pipeline.Options{
		Config:   cfg.Engine,
		Registry: reg,
		Metrics:  m,
		Logger:   logger,
		Status:   os.Stderr,
	})
	if err != nil {
		return err
	}

	if err := writeResults(cfg.Output, out.Results); err != nil {
		return err
	}
	if cfg.Output.RejectionsPath != "" {
		err := export.WriteFile(cfg.Output.RejectionsPath, func(w io.Writer) error {
			return export.WriteRejections(w, out.Rejected)
		})
		if err != nil {
			return fmt.Errorf("writing rejections: %w", err)
		}
	}
	if err := m.WriteTextfile(metricsFile); err != nil {
		return err
	}

	summary := evaluateSummary{
		Input:    inputPath,
		Scored:   len(out.Results),
		Counts:   out.Counts,
		Rejected: out.Rejected,
		Output:   cfg.Output.Path,
	}
	if store != nil {
		run, err := store.SaveRun(ctx, inputPath, cfg.Engine, out.Results, out.Rejected)
		if err != nil {
			return err
		}
		summary.RunID = run.ID
	}

	// Results on stdout keep the report off the data stream.
	report := io.Writer(os.Stdout)
	if cfg.Output.Path == "" {
		report = os.Stderr
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if err := printSummary(report, summary, jsonOutput); err != nil {
		return err
	}

	failOnReject, _ := cmd.Flags().GetBool("fail-on-reject")
	if failOnReject && out.HasRejections() {
		return fmt.Errorf("%d record(s) rejected", len(out.Rejected))
	}
	return nil
}

func writeResults(cfg types.OutputConfig, results []types.GovernanceResult) error {
	format := cfg.Format
	if format == "" && cfg.Path != "" {
		if f, err := ingest.FormatOf(cfg.Path); err == nil {
			format = f
		}
	}
	if format == "" {
		format = types.FormatCSV
	}

	write := func(w io.Writer) error {
		return export.WriteResults(w, results, format, cfg.TraceSeparator)
	}
	if cfg.Path == "" {
		return write(os.Stdout)
	}
	if err := export.WriteFile(cfg.Path, write); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, s evaluateSummary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintln(w, "Channel distribution:")
	for _, ch := range types.Channels {
		n := s.Counts[ch]
		pct := 0.0
		if s.Scored > 0 {
			pct = 100 * float64(n) / float64(s.Scored)
		}
		fmt.Fprintf(w, "  %-6s  %5d  %5.1f%%\n", ch, n, pct)
	}
	fmt.Fprintf(w, "  %-6s  %5d\n", "TOTAL", s.Scored)
	if len(s.Rejected) > 0 {
		fmt.Fprintf(w, "\n%d record(s) rejected\n", len(s.Rejected))
	}
	if s.Output != "" {
		fmt.Fprintf(w, "\nResults written to %s\n", s.Output)
	}
	if s.RunID != "" {
		fmt.Fprintf(w, "Run %s saved to registry\n", s.RunID)
	}
	return nil
}

func init() {
	d := types.DefaultPipelineConfig()
	f := evaluateCmd.Flags()
	f.String("out", "", "result file (default: stdout)")
	f.String("format", "", "result format: csv, yaml or json (default: from --out extension, then csv)")
	f.String("rejections", "", "write the rejected-record report to this CSV file")
	f.Int("workers", 0, "concurrent records (0 uses GOMAXPROCS)")
	f.Float64("green-threshold", d.Engine.GreenThreshold, "minimum trust score for the GREEN channel")
	f.Float64("gis-tolerance", d.Engine.GISToleranceMeters, "accepted claimed-to-official plot offset in meters")
	f.Int("fuzzy-max", d.Engine.FuzzyMaxEdits, "largest edit distance treated as a spelling variant")
	f.Int("grace-months", d.Engine.GracePeriodMonths, "inheritance grace period shown in GREY actions")
	f.String("village", "", "village code for rows without one")
	f.String("device", "", "device ID for rows without one")
	f.String("registry-db", "", "SQLite registry file to persist the run in")
	f.Bool("seed-registry", false, "report identifier collisions against runs in the registry")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile")
	f.Bool("fail-on-reject", false, "exit non-zero when any record is rejected")
	f.Bool("json", false, "print the summary as JSON")

	for key, name := range evaluateFlags {
		if err := viper.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(evaluateCmd)
}
