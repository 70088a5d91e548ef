// Package config loads experiment descriptions from JSON or YAML files.
//
// Every field is optional. Pointer fields distinguish "not set" from a zero
// value so command-line flags can override a file without clobbering it, and
// the Get* methods supply defaults for anything left unset.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/response.report/internal/fsutil"
)

// Defaults for an optical run with a 15 minute exposure cycle.
const (
	DefaultSignal    = "optical"
	DefaultTimeCycle = 15.0
	DefaultResTime   = 5.0
	DefaultRecTime   = 10.0
	DefaultBackend   = "html"
	DefaultWidth     = 1000
	DefaultHeight    = 650

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// ExperimentConfig is the on-disk description of one experiment.
type ExperimentConfig struct {
	Signal  *string  `json:"signal,omitempty" yaml:"signal,omitempty"`
	Format  *string  `json:"format,omitempty" yaml:"format,omitempty"`
	Files   []string `json:"files,omitempty" yaml:"files,omitempty"`
	DataDir *string  `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	Lenient *bool    `json:"lenient,omitempty" yaml:"lenient,omitempty"`

	// Exposure schedule, minutes.
	TimeCycle *float64 `json:"time_cycle,omitempty" yaml:"time_cycle,omitempty"`
	ResTime   *float64 `json:"res_time,omitempty" yaml:"res_time,omitempty"`
	RecTime   *float64 `json:"rec_time,omitempty" yaml:"rec_time,omitempty"`

	// Parameters is the unit followed by one value per file, e.g. ["ppm", 10, 20, 30].
	Parameters []interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Presentation
	Title         *string `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle      *string `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	StimulusLabel *string `json:"stimulus_label,omitempty" yaml:"stimulus_label,omitempty"`
	LegendTitle   *string `json:"legend_title,omitempty" yaml:"legend_title,omitempty"`
	Width         *int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height        *int    `json:"height,omitempty" yaml:"height,omitempty"`

	// Output
	Backend *string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Output  *string `json:"output,omitempty" yaml:"output,omitempty"`
	Export  *string `json:"export,omitempty" yaml:"export,omitempty"`
}

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Load reads an ExperimentConfig from a .json, .yaml or .yml file on fsys.
// A nil fsys reads from the OS filesystem. Unknown keys are rejected so typos
// surface instead of silently defaulting.
func Load(fsys fsutil.FileSystem, path string) (*ExperimentConfig, error) {
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}
	if !fsys.Exists(cleanPath) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cleanPath)
	}

	f, err := fsys.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	fileInfo, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}
	data, err := io.ReadAll(io.LimitReader(f, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data, ext)
	if err != nil {
		return nil, err
	}
	cfg.expandEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".json", ".yaml" or ".yml").
func Parse(data []byte, ext string) (*ExperimentConfig, error) {
	cfg := &ExperimentConfig{}
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

// expandEnv expands ${VAR} references in path fields.
func (c *ExperimentConfig) expandEnv() {
	if c.DataDir != nil {
		*c.DataDir = os.ExpandEnv(*c.DataDir)
	}
	for i, f := range c.Files {
		c.Files[i] = os.ExpandEnv(f)
	}
	if c.Output != nil {
		*c.Output = os.ExpandEnv(*c.Output)
	}
}

// Validate checks the values that are set.
func (c *ExperimentConfig) Validate() error {
	if c.Signal != nil {
		switch strings.ToLower(*c.Signal) {
		case "optical", "resistance":
		default:
			return fmt.Errorf("signal must be optical or resistance, got %q", *c.Signal)
		}
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"time_cycle", c.TimeCycle}, {"res_time", c.ResTime}, {"rec_time", c.RecTime}} {
		if f.v != nil && !(*f.v >= 0) {
			return fmt.Errorf("%s must be non-negative, got %g", f.name, *f.v)
		}
	}
	if c.GetResTime()+c.GetRecTime() <= 0 {
		return fmt.Errorf("res_time + rec_time must be positive")
	}
	if c.Width != nil && *c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %d", *c.Width)
	}
	if c.Height != nil && *c.Height <= 0 {
		return fmt.Errorf("height must be positive, got %d", *c.Height)
	}
	if c.Backend != nil {
		switch strings.ToLower(*c.Backend) {
		case "html", "png", "svg":
		default:
			return fmt.Errorf("backend must be html, png or svg, got %q", *c.Backend)
		}
	}
	if c.Export != nil {
		switch strings.ToLower(*c.Export) {
		case "", "csv", "xlsx":
		default:
			return fmt.Errorf("export must be csv or xlsx, got %q", *c.Export)
		}
	}
	if len(c.Parameters) > 0 {
		params, err := c.ParameterStrings()
		if err != nil {
			return err
		}
		if len(c.Files) > 0 && len(params)-1 != len(c.Files) {
			return fmt.Errorf("parameters has %d values for %d files", len(params)-1, len(c.Files))
		}
	}
	return nil
}

// ParameterStrings returns Parameters as strings, unit first. The unit must
// be a string and every following entry a number.
func (c *ExperimentConfig) ParameterStrings() ([]string, error) {
	if len(c.Parameters) == 0 {
		return nil, nil
	}
	unit, ok := c.Parameters[0].(string)
	if !ok {
		return nil, fmt.Errorf("parameters[0] must be the unit string, got %v", c.Parameters[0])
	}
	out := []string{unit}
	for i, v := range c.Parameters[1:] {
		switch n := v.(type) {
		case int:
			out = append(out, strconv.Itoa(n))
		case float64:
			out = append(out, strconv.FormatFloat(n, 'f', -1, 64))
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
				return nil, fmt.Errorf("parameters[%d] %q is not a number", i+1, n)
			}
			out = append(out, strings.TrimSpace(n))
		default:
			return nil, fmt.Errorf("parameters[%d] must be a number, got %v", i+1, v)
		}
	}
	return out, nil
}

// GetSignal returns the signal kind or the default.
func (c *ExperimentConfig) GetSignal() string {
	if c.Signal == nil || *c.Signal == "" {
		return DefaultSignal
	}
	return strings.ToLower(*c.Signal)
}

// GetFormat returns the adapter format tag, or "" to use the signal's default.
func (c *ExperimentConfig) GetFormat() string {
	if c.Format == nil {
		return ""
	}
	return *c.Format
}

// GetDataDir returns the data directory or "".
func (c *ExperimentConfig) GetDataDir() string {
	if c.DataDir == nil {
		return ""
	}
	return *c.DataDir
}

// GetLenient returns the lenient flag or false.
func (c *ExperimentConfig) GetLenient() bool {
	return c.Lenient != nil && *c.Lenient
}

// GetTimeCycle returns time_cycle or the default.
func (c *ExperimentConfig) GetTimeCycle() float64 {
	if c.TimeCycle == nil {
		return DefaultTimeCycle
	}
	return *c.TimeCycle
}

// GetResTime returns res_time or the default.
func (c *ExperimentConfig) GetResTime() float64 {
	if c.ResTime == nil {
		return DefaultResTime
	}
	return *c.ResTime
}

// GetRecTime returns rec_time or the default.
func (c *ExperimentConfig) GetRecTime() float64 {
	if c.RecTime == nil {
		return DefaultRecTime
	}
	return *c.RecTime
}

// GetTitle returns the chart title or "".
func (c *ExperimentConfig) GetTitle() string { return deref(c.Title) }

// GetSubtitle returns the chart subtitle or "".
func (c *ExperimentConfig) GetSubtitle() string { return deref(c.Subtitle) }

// GetStimulusLabel returns the band label or "".
func (c *ExperimentConfig) GetStimulusLabel() string { return deref(c.StimulusLabel) }

// GetLegendTitle returns the legend heading or "".
func (c *ExperimentConfig) GetLegendTitle() string { return deref(c.LegendTitle) }

// GetWidth returns the figure width in pixels or the default.
func (c *ExperimentConfig) GetWidth() int {
	if c.Width == nil {
		return DefaultWidth
	}
	return *c.Width
}

// GetHeight returns the figure height in pixels or the default.
func (c *ExperimentConfig) GetHeight() int {
	if c.Height == nil {
		return DefaultHeight
	}
	return *c.Height
}

// GetBackend returns the backend name or the default.
func (c *ExperimentConfig) GetBackend() string {
	if c.Backend == nil || *c.Backend == "" {
		return DefaultBackend
	}
	return strings.ToLower(*c.Backend)
}

// GetOutput returns the output path, or "" to derive one.
func (c *ExperimentConfig) GetOutput() string { return deref(c.Output) }

// GetExport returns the export format or "" for none.
func (c *ExperimentConfig) GetExport() string { return strings.ToLower(deref(c.Export)) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Helper functions to create pointers
func PtrString(v string) *string    { return &v }
func PtrFloat64(v float64) *float64 { return &v }
func PtrInt(v int) *int             { return &v }
func PtrBool(v bool) *bool          { return &v }
