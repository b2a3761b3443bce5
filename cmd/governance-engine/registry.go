// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/governance-engine/internal/registry"
	"github.com/pdiddy/governance-engine/pkg/types"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect runs persisted in the registry database",
	Long: `Registry reads the SQLite database that evaluate writes with
--registry-db. Use subcommands to list runs or export one.`,
}

// --- runs subcommand ---

var registryRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted runs, most recent first",
	RunE:  runRegistryRuns,
}

func runRegistryRuns(cmd *cobra.Command, args []string) error {
	store, err := openRegistry(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRuns(cmd.OutOrStdout(), runs, jsonOutput)
}

func formatRuns(w io.Writer, runs []registry.Run, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %6s  %5s  %5s  %5s  %5s  %8s  %s\n",
		"Run", "Started", "Scored", "Green", "Grey", "Amber", "Red", "Rejected", "Input")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-20s  %6d  %5d  %5d  %5d  %5d  %8d  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Scored(),
			r.Counts[types.ChannelGreen], r.Counts[types.ChannelGrey],
			r.Counts[types.ChannelAmber], r.Counts[types.ChannelRed],
			r.Rejected, r.Input)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
	return nil
}

// --- export subcommand ---

var registryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a persisted run to YAML or JSON",
	Long: `Export writes one run with its results, audit traces and rejections
to stdout or --out. --run accepts a run ID or "latest".`,
	RunE: runRegistryExport,
}

func runRegistryExport(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	store, err := openRegistry(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	ctx := context.Background()
	switch types.OutputFormat(format) {
	case types.FormatYAML, "":
		err = store.ExportYAML(ctx, runID, w)
	case types.FormatJSON:
		err = store.ExportJSON(ctx, runID, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Exported run %s to %s\n", runID, outPath)
	}
	return nil
}

// --- shared helpers ---

func openRegistry(cmd *cobra.Command) (*registry.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = viper.GetString("registry.db_path")
	}
	if path == "" {
		return nil, fmt.Errorf("registry database required: set --db or registry.db_path")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}
	return registry.Open(path, logger)
}

func init() {
	registryCmd.PersistentFlags().String("db", "", "SQLite registry file (default: registry.db_path from config)")

	registryRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	registryExportCmd.Flags().String("run", "latest", "run ID or \"latest\"")
	registryExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	registryExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	registryCmd.AddCommand(registryRunsCmd)
	registryCmd.AddCommand(registryExportCmd)
	rootCmd.AddCommand(registryCmd)
}
