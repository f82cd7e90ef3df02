package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout describes how the plotter names the files on the plot directory.
type Layout struct {
	// UnitPrefix is the unit file name prefix before the numeric index (e.g. `postdata_`).
	UnitPrefix string
	// UnitExtension is the finished unit file extension (e.g. `.bin`).
	UnitExtension string
	// TempExtension is the extension of the unit file being written (e.g. `.dtmp`).
	TempExtension string
	// MetadataFile is the job metadata file name.
	MetadataFile string
	// ProgressFile is the completed units counter file name.
	ProgressFile string
}

// Validate validates the layout.
func (l Layout) Validate() error {
	if l.UnitPrefix == "" {
		return fmt.Errorf("unit prefix is required: %w", ErrNotValid)
	}

	if !strings.HasPrefix(l.UnitExtension, ".") {
		return fmt.Errorf("unit extension must start with a dot: %w", ErrNotValid)
	}

	if !strings.HasPrefix(l.TempExtension, ".") {
		return fmt.Errorf("temp extension must start with a dot: %w", ErrNotValid)
	}

	if l.TempExtension == l.UnitExtension {
		return fmt.Errorf("temp extension can't be the same as the unit extension: %w", ErrNotValid)
	}

	if l.MetadataFile == "" || l.ProgressFile == "" {
		return fmt.Errorf("metadata and progress file names are required: %w", ErrNotValid)
	}

	return nil
}

// MonitorConfig is the configuration of a monitoring session.
type MonitorConfig struct {
	Directory    string
	Variant      Variant
	Interval     time.Duration
	MaxRetries   int
	SampleWindow int
	Layout       Layout
}

// Validate validates the monitor configuration.
func (c MonitorConfig) Validate() error {
	if c.Directory == "" {
		return fmt.Errorf("directory is required: %w", ErrNotValid)
	}

	if err := c.Variant.Validate(); err != nil {
		return err
	}

	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive: %w", ErrNotValid)
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1: %w", ErrNotValid)
	}

	if c.SampleWindow < 2 {
		return fmt.Errorf("sample window must be at least 2: %w", ErrNotValid)
	}

	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	return nil
}

// ParseInterval parses a poll interval. A bare integer is a number of seconds
// (e.g. `5`), anything else is parsed as a Go duration (e.g. `1m30s`).
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs < 0 || secs > int64(time.Duration(1<<63-1)/time.Second) {
			return 0, fmt.Errorf("interval out of range: %d seconds: %w", secs, ErrNotValid)
		}
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q, use seconds or a duration: %w", s, ErrNotValid)
	}

	return d, nil
}
