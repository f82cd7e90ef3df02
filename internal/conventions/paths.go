package conventions

import (
	"path/filepath"
	"time"

	"github.com/slok/plotmon/internal/model"
)

const (
	// DefaultDataDir is the default plotmon data directory name (relative to home).
	DefaultDataDir = ".plotmon"
	// ConfigFile is the config file name inside the data directory.
	ConfigFile = "config.yaml"

	// Plot directory files.

	// UnitPrefix is the prefix of the plot unit files, followed by the unit index.
	UnitPrefix = "postdata_"
	// UnitExtension is the extension of the finished plot unit files.
	UnitExtension = ".bin"
	// TempExtension is the extension of the unit file being written by the H9 plotter.
	TempExtension = ".dtmp"
	// MetadataFile is the job metadata file written by the plotter.
	MetadataFile = "postdata_metadata.json"
	// ProgressFile is the H9 plotter completed units counter file.
	ProgressFile = "progress.json"

	// Monitor defaults.

	// DefaultInterval is the default time between polls.
	DefaultInterval = 5 * time.Second
	// DefaultMaxRetries is the number of consecutive recoverable failures tolerated.
	DefaultMaxRetries = 3
	// DefaultSampleWindow is the number of most recent units used to compute the throughput.
	DefaultSampleWindow = 10
)

// DefaultLayout returns the plot directory layout used by the plotters.
func DefaultLayout() model.Layout {
	return model.Layout{
		UnitPrefix:    UnitPrefix,
		UnitExtension: UnitExtension,
		TempExtension: TempExtension,
		MetadataFile:  MetadataFile,
		ProgressFile:  ProgressFile,
	}
}

// ConfigPath returns the default config file path.
func ConfigPath(homeDir string) string {
	return filepath.Join(homeDir, DefaultDataDir, ConfigFile)
}
