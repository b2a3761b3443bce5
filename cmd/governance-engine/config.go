// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// setConfigDefaults registers every configuration key with its default so
// that environment variables and bound flags resolve for nested keys.
func setConfigDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()
	v.SetDefault("engine.green_threshold", d.Engine.GreenThreshold)
	v.SetDefault("engine.gis_tolerance_radius_meters", d.Engine.GISToleranceMeters)
	v.SetDefault("engine.fuzzy_match_edit_distance_max", d.Engine.FuzzyMaxEdits)
	v.SetDefault("engine.inheritance_grace_period_months", d.Engine.GracePeriodMonths)
	v.SetDefault("engine.workers", d.Engine.Workers)
	v.SetDefault("engine.context.default_village", d.Engine.Context.Village)
	v.SetDefault("engine.context.default_device", d.Engine.Context.Device)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", string(d.Output.Format))
	v.SetDefault("output.rejections_path", d.Output.RejectionsPath)
	v.SetDefault("output.trace_separator", d.Output.TraceSeparator)
	v.SetDefault("registry.db_path", d.Registry.DBPath)
	v.SetDefault("registry.seed", d.Registry.Seed)
}

// loadConfig decodes the merged defaults, config file, environment and
// bound flags into a validated PipelineConfig.
func loadConfig(v *viper.Viper) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}
