package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// EngineConfig holds the policy-tunable settings of the scoring engine.
type EngineConfig struct {
	// GreenThreshold is the minimum trust score for the GREEN channel (default 0.75).
	GreenThreshold float64 `json:"green_threshold" yaml:"green_threshold" mapstructure:"green_threshold" validate:"gt=0,lte=1"`

	// GISToleranceMeters is the accepted offset between claimed and
	// official plot coordinates (default 100).
	GISToleranceMeters float64 `json:"gis_tolerance_radius_meters" yaml:"gis_tolerance_radius_meters" mapstructure:"gis_tolerance_radius_meters" validate:"gt=0"`

	// FuzzyMaxEdits is the largest edit distance treated as a spelling
	// variant of the same name or vocabulary term (default 2).
	FuzzyMaxEdits int `json:"fuzzy_match_edit_distance_max" yaml:"fuzzy_match_edit_distance_max" mapstructure:"fuzzy_match_edit_distance_max" validate:"gte=0,lte=10"`

	// GracePeriodMonths annotates inheritance traces; it does not affect the score.
	GracePeriodMonths int `json:"inheritance_grace_period_months" yaml:"inheritance_grace_period_months" mapstructure:"inheritance_grace_period_months" validate:"gte=0,lte=240"`

	// Workers bounds batch concurrency. Zero uses GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=0"`

	// Context fills village and device fields missing from the input.
	Context ContextDefaults `json:"context" yaml:"context" mapstructure:"context"`
}

// ContextDefaults supplies identifier context for rows that lack it.
type ContextDefaults struct {
	Village string `json:"default_village" yaml:"default_village" mapstructure:"default_village"`
	Device  string `json:"default_device" yaml:"default_device" mapstructure:"default_device"`
}

// Default engine settings pending policy sign-off.
const (
	DefaultGreenThreshold     = 0.75
	DefaultGISToleranceMeters = 100.0
	DefaultFuzzyMaxEdits      = 2
	DefaultGracePeriodMonths  = 24
	DefaultTraceSeparator     = "; "
)

// DefaultEngineConfig returns the engine configuration with default values.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		GreenThreshold:     DefaultGreenThreshold,
		GISToleranceMeters: DefaultGISToleranceMeters,
		FuzzyMaxEdits:      DefaultFuzzyMaxEdits,
		GracePeriodMonths:  DefaultGracePeriodMonths,
	}
}

var configValidate = validator.New()

// Validate checks the configuration against its field constraints.
func (c EngineConfig) Validate() error {
	return validateStruct("engine", c)
}

// OutputFormat selects the result export format.
type OutputFormat string

const (
	FormatCSV  OutputFormat = "csv"
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
)

// OutputConfig holds settings for exporting a batch.
type OutputConfig struct {
	// Path is the result file. Empty writes to stdout.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Format defaults to the Path extension, then csv.
	Format OutputFormat `json:"format" yaml:"format" mapstructure:"format" validate:"omitempty,oneof=csv yaml json"`

	// RejectionsPath receives the rejected-record report. Empty skips it.
	RejectionsPath string `json:"rejections_path" yaml:"rejections_path" mapstructure:"rejections_path"`

	// TraceSeparator joins audit trace lines into one export field (default "; ").
	TraceSeparator string `json:"trace_separator" yaml:"trace_separator" mapstructure:"trace_separator"`
}

// RegistryConfig holds settings for the persisted registry.
type RegistryConfig struct {
	// DBPath is the SQLite database file. Empty disables persistence.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// Seed loads identifier sources from earlier runs into the collision registry.
	Seed bool `json:"seed" yaml:"seed" mapstructure:"seed"`
}

// PipelineConfig groups the engine, output and registry settings read
// from governance-engine.yaml.
type PipelineConfig struct {
	Engine   EngineConfig   `json:"engine" yaml:"engine" mapstructure:"engine"`
	Output   OutputConfig   `json:"output" yaml:"output" mapstructure:"output"`
	Registry RegistryConfig `json:"registry" yaml:"registry" mapstructure:"registry"`
}

// DefaultPipelineConfig returns a PipelineConfig with default values.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Engine: DefaultEngineConfig(),
		Output: OutputConfig{TraceSeparator: DefaultTraceSeparator},
	}
}

// Validate checks every section of the configuration.
func (c PipelineConfig) Validate() error {
	return validateStruct("pipeline", c)
}

func validateStruct(section string, v any) error {
	if err := configValidate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s config: %s fails %q (got %v)", section, fe.Namespace(), fe.Tag()+"="+fe.Param(), fe.Value())
		}
		return fmt.Errorf("invalid %s config: %w", section, err)
	}
	return nil
}
