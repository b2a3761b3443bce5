// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the governance-engine CLI. It scores
// legacy land-record registers, routes each record to a governance
// channel, and keeps a registry of evaluated runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from the persistent logging flags before any
// subcommand runs.
var logger = slog.Default()

// shutdownTracing flushes the tracer provider when --trace-stdout is set.
var shutdownTracing = func(context.Context) error { return nil }

// rootCmd is the base command for the governance-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "governance-engine",
	Short: "Trust scoring and channel routing for legacy land records",
	Long: `governance-engine evaluates Jamabandi register rows against identity,
land-category, possession and GIS rules, computes a trust score, and routes
each record to the GREEN, GREY, AMBER or RED governance channel with an
audit trace explaining the decision.

Use evaluate to score a register, registry to inspect persisted runs, and
fid to derive an occupant identifier offline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		asJSON, _ := cmd.Flags().GetBool("log-json")
		l, err := newLogger(level, asJSON)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)

		if traceStdout, _ := cmd.Flags().GetBool("trace-stdout"); traceStdout {
			shutdown, err := initTracing(version)
			if err != nil {
				return err
			}
			shutdownTracing = shutdown
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdownTracing(context.Background())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./governance-engine.yaml or ~/.config/governance-engine/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().Bool("trace-stdout", false, "export pipeline spans to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("governance-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "governance-engine"))
		}
	}

	setConfigDefaults(viper.GetViper())
	viper.SetEnvPrefix("GOVERNANCE_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
