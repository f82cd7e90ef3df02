package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/plotmon/internal/conventions"
	"github.com/slok/plotmon/internal/model"
)

// ConfigYAMLRepository loads monitor configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads a monitor configuration from a YAML file. Missing settings get
// the default values. The result may still lack the directory, it's validated by the caller.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (*model.MonitorConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg MonitorConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	m := cfg.toModel()
	return &m, nil
}

// DefaultConfig returns the monitor configuration used when there is no config file.
func DefaultConfig() model.MonitorConfig {
	return MonitorConfig{}.toModel()
}

// MonitorConfig represents the YAML structure for monitor configuration.
type MonitorConfig struct {
	Directory    string       `yaml:"directory"`
	Variant      string       `yaml:"variant"`
	Interval     Interval     `yaml:"interval"`
	MaxRetries   int          `yaml:"max_retries"`
	SampleWindow int          `yaml:"sample_window"`
	Layout       LayoutConfig `yaml:"layout"`
}

// Interval is a poll interval, in seconds (`5`) or as a duration (`1m30s`).
type Interval time.Duration

func (i *Interval) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: interval must be a scalar", value.Line)
	}

	d, err := model.ParseInterval(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*i = Interval(d)

	return nil
}

// LayoutConfig represents the YAML structure for the plot directory naming.
type LayoutConfig struct {
	Prefix        string `yaml:"prefix"`
	Extension     string `yaml:"extension"`
	TempExtension string `yaml:"temp_extension"`
	MetadataFile  string `yaml:"metadata_file"`
	ProgressFile  string `yaml:"progress_file"`
}

func (c MonitorConfig) validate() error {
	if c.Variant != "" {
		if err := model.Variant(c.Variant).Validate(); err != nil {
			return err
		}
	}

	if c.Interval < 0 {
		return fmt.Errorf("interval can't be negative, got: %s", time.Duration(c.Interval))
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries can't be negative, got: %d", c.MaxRetries)
	}
	if c.SampleWindow < 0 || c.SampleWindow == 1 {
		return fmt.Errorf("sample_window must be at least 2, got: %d", c.SampleWindow)
	}

	return nil
}

func (c MonitorConfig) toModel() model.MonitorConfig {
	layout := conventions.DefaultLayout()
	setIfNotEmpty(&layout.UnitPrefix, c.Layout.Prefix)
	setIfNotEmpty(&layout.UnitExtension, c.Layout.Extension)
	setIfNotEmpty(&layout.TempExtension, c.Layout.TempExtension)
	setIfNotEmpty(&layout.MetadataFile, c.Layout.MetadataFile)
	setIfNotEmpty(&layout.ProgressFile, c.Layout.ProgressFile)

	cfg := model.MonitorConfig{
		Directory:    c.Directory,
		Variant:      model.Variant(c.Variant),
		Interval:     time.Duration(c.Interval),
		MaxRetries:   c.MaxRetries,
		SampleWindow: c.SampleWindow,
		Layout:       layout,
	}

	if cfg.Variant == "" {
		cfg.Variant = model.VariantStandard
	}
	if cfg.Interval == 0 {
		cfg.Interval = conventions.DefaultInterval
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = conventions.DefaultMaxRetries
	}
	if cfg.SampleWindow == 0 {
		cfg.SampleWindow = conventions.DefaultSampleWindow
	}

	return cfg
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
