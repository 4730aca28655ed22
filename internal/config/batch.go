package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical batch defaults file.
const DefaultConfigPath = "config/batch.defaults.json"

// BatchConfig describes one batch run. Fields omitted from a config file
// fall back to the defaults returned by the Get* methods.
type BatchConfig struct {
	// Folders
	RawFolder     *string `json:"raw_folder,omitempty" yaml:"raw_folder,omitempty" validate:"omitnil,min=1"`
	ResultsFolder *string `json:"results_folder,omitempty" yaml:"results_folder,omitempty" validate:"omitnil,min=1"`

	// Run keys
	Participants []string `json:"participants,omitempty" yaml:"participants,omitempty" validate:"omitempty,dive,required"`
	Tasks        []string `json:"tasks,omitempty" yaml:"tasks,omitempty" validate:"omitempty,dive,required"`
	Sessions     []string `json:"sessions,omitempty" yaml:"sessions,omitempty" validate:"omitempty,dive,required"`

	// Input
	InputFormat  *string `json:"input_format,omitempty" yaml:"input_format,omitempty" validate:"omitempty,oneof=csv edf"`
	InputPattern *string `json:"input_pattern,omitempty" yaml:"input_pattern,omitempty" validate:"omitempty,runpattern"`
	EDFSignal    *int    `json:"edf_signal,omitempty" yaml:"edf_signal,omitempty" validate:"omitnil,gte=0"`

	// Preparation
	SourceRateHz     *float64 `json:"source_rate_hz,omitempty" yaml:"source_rate_hz,omitempty" validate:"omitnil,gt=0"`
	TrimSeconds      *float64 `json:"trim_seconds,omitempty" yaml:"trim_seconds,omitempty" validate:"omitnil,gte=0"`
	DownsampleFactor *int     `json:"downsample_factor,omitempty" yaml:"downsample_factor,omitempty" validate:"omitnil,gte=1"`

	// Processing
	AmplitudeMin *float64 `json:"amplitude_min,omitempty" yaml:"amplitude_min,omitempty" validate:"omitnil,gt=0,lte=1"`

	// Figure
	FigureWidthIn  *float64 `json:"figure_width_in,omitempty" yaml:"figure_width_in,omitempty" validate:"omitnil,gt=0"`
	FigureHeightIn *float64 `json:"figure_height_in,omitempty" yaml:"figure_height_in,omitempty" validate:"omitnil,gt=0"`

	// Optional outputs
	HTMLReport   *bool   `json:"html_report,omitempty" yaml:"html_report,omitempty"`
	WriteXLSX    *bool   `json:"write_xlsx,omitempty" yaml:"write_xlsx,omitempty"`
	DatabasePath *string `json:"database_path,omitempty" yaml:"database_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Pattern placeholders for InputPattern.
const (
	PlaceholderParticipant = "{participant}"
	PlaceholderTask        = "{task}"
	PlaceholderSession     = "{session}"
)

// EmptyBatchConfig returns a BatchConfig with all fields unset.
func EmptyBatchConfig() *BatchConfig {
	return &BatchConfig{}
}

// DefaultBatchConfig returns a BatchConfig with every field set to its
// default.
func DefaultBatchConfig() *BatchConfig {
	c := EmptyBatchConfig()
	return &BatchConfig{
		RawFolder:        ptrString(c.GetRawFolder()),
		ResultsFolder:    ptrString(c.GetResultsFolder()),
		Participants:     c.GetParticipants(),
		Tasks:            c.GetTasks(),
		Sessions:         c.GetSessions(),
		InputFormat:      ptrString(c.GetInputFormat()),
		InputPattern:     ptrString(c.GetInputPattern()),
		EDFSignal:        ptrInt(c.GetEDFSignal()),
		SourceRateHz:     ptrFloat64(c.GetSourceRateHz()),
		TrimSeconds:      ptrFloat64(c.GetTrimSeconds()),
		DownsampleFactor: ptrInt(c.GetDownsampleFactor()),
		AmplitudeMin:     ptrFloat64(c.GetAmplitudeMin()),
		FigureWidthIn:    ptrFloat64(c.GetFigureWidthIn()),
		FigureHeightIn:   ptrFloat64(c.GetFigureHeightIn()),
		HTMLReport:       ptrBool(c.GetHTMLReport()),
		WriteXLSX:        ptrBool(c.GetWriteXLSX()),
		DatabasePath:     ptrString(c.GetDatabasePath()),
	}
}

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// LoadBatchConfig loads a BatchConfig from a .json, .yaml or .yml file.
// Fields omitted from the file retain their default values, so partial
// configs are safe.
func LoadBatchConfig(path string) (*BatchConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyBatchConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *BatchConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadBatchConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("runpattern", isRunPattern); err != nil {
		panic(err)
	}
	return v
}

// isRunPattern requires all three run key placeholders so that every key
// maps to a distinct file.
func isRunPattern(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	return strings.Contains(p, PlaceholderParticipant) &&
		strings.Contains(p, PlaceholderTask) &&
		strings.Contains(p, PlaceholderSession)
}

// Validate checks that the configuration values are valid.
func (c *BatchConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	if c.GetTrimSeconds() > 0 && c.TrimSamples() == 0 {
		return fmt.Errorf("trim_seconds %g is shorter than one sample at %g Hz", c.GetTrimSeconds(), c.GetSourceRateHz())
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "runpattern":
		return fmt.Sprintf("%s must contain %s, %s and %s", field, PlaceholderParticipant, PlaceholderTask, PlaceholderSession)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// GetRawFolder returns the raw_folder value or the default.
func (c *BatchConfig) GetRawFolder() string {
	if c.RawFolder == nil {
		return "data/raw"
	}
	return *c.RawFolder
}

// GetResultsFolder returns the results_folder value or the default.
func (c *BatchConfig) GetResultsFolder() string {
	if c.ResultsFolder == nil {
		return "results"
	}
	return *c.ResultsFolder
}

// GetParticipants returns the participants or the default list.
func (c *BatchConfig) GetParticipants() []string {
	if len(c.Participants) == 0 {
		return []string{"sub01", "sub02", "sub03"}
	}
	return c.Participants
}

// GetTasks returns the tasks or the default list.
func (c *BatchConfig) GetTasks() []string {
	if len(c.Tasks) == 0 {
		return []string{"sound", "silent"}
	}
	return c.Tasks
}

// GetSessions returns the sessions or the default list.
func (c *BatchConfig) GetSessions() []string {
	if len(c.Sessions) == 0 {
		return []string{"first_converted", "second_converted"}
	}
	return c.Sessions
}

// GetInputFormat returns the input_format value or the default.
func (c *BatchConfig) GetInputFormat() string {
	if c.InputFormat == nil || *c.InputFormat == "" {
		return "csv"
	}
	return *c.InputFormat
}

// GetInputPattern returns the input file name pattern. The default depends
// on the input format.
func (c *BatchConfig) GetInputPattern() string {
	if c.InputPattern == nil || *c.InputPattern == "" {
		return PlaceholderParticipant + "_" + PlaceholderTask + "_" + PlaceholderSession + "_eda." + c.GetInputFormat()
	}
	return *c.InputPattern
}

// InputName expands the input pattern for one run key.
func (c *BatchConfig) InputName(participant, task, session string) string {
	return strings.NewReplacer(
		PlaceholderParticipant, participant,
		PlaceholderTask, task,
		PlaceholderSession, session,
	).Replace(c.GetInputPattern())
}

// GetEDFSignal returns the edf_signal value or the default.
func (c *BatchConfig) GetEDFSignal() int {
	if c.EDFSignal == nil {
		return 0
	}
	return *c.EDFSignal
}

// GetSourceRateHz returns the source_rate_hz value or the default.
func (c *BatchConfig) GetSourceRateHz() float64 {
	if c.SourceRateHz == nil {
		return 1000
	}
	return *c.SourceRateHz
}

// GetTrimSeconds returns the trim_seconds value or the default.
func (c *BatchConfig) GetTrimSeconds() float64 {
	if c.TrimSeconds == nil {
		return 30
	}
	return *c.TrimSeconds
}

// GetDownsampleFactor returns the downsample_factor value or the default.
func (c *BatchConfig) GetDownsampleFactor() int {
	if c.DownsampleFactor == nil {
		return 100
	}
	return *c.DownsampleFactor
}

// TrimSamples is the number of leading samples discarded from each raw
// signal.
func (c *BatchConfig) TrimSamples() int {
	return int(math.Round(c.GetTrimSeconds() * c.GetSourceRateHz()))
}

// TargetRateHz is the sampling rate after downsampling.
func (c *BatchConfig) TargetRateHz() float64 {
	return c.GetSourceRateHz() / float64(c.GetDownsampleFactor())
}

// GetAmplitudeMin returns the amplitude_min value or the default.
func (c *BatchConfig) GetAmplitudeMin() float64 {
	if c.AmplitudeMin == nil {
		return 0.1
	}
	return *c.AmplitudeMin
}

// GetFigureWidthIn returns the figure_width_in value or the default.
func (c *BatchConfig) GetFigureWidthIn() float64 {
	if c.FigureWidthIn == nil {
		return 20
	}
	return *c.FigureWidthIn
}

// GetFigureHeightIn returns the figure_height_in value or the default.
func (c *BatchConfig) GetFigureHeightIn() float64 {
	if c.FigureHeightIn == nil {
		return 12
	}
	return *c.FigureHeightIn
}

// GetHTMLReport returns the html_report value or the default.
func (c *BatchConfig) GetHTMLReport() bool {
	if c.HTMLReport == nil {
		return false
	}
	return *c.HTMLReport
}

// GetWriteXLSX returns the write_xlsx value or the default.
func (c *BatchConfig) GetWriteXLSX() bool {
	if c.WriteXLSX == nil {
		return false
	}
	return *c.WriteXLSX
}

// GetDatabasePath returns the database_path value or the default (empty,
// persistence disabled).
func (c *BatchConfig) GetDatabasePath() string {
	if c.DatabasePath == nil {
		return ""
	}
	return *c.DatabasePath
}
