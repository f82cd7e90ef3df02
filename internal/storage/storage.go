package storage

import (
	"context"

	"github.com/slok/plotmon/internal/model"
)

// PlotRepository is the interface for reading a plot directory state.
// Every call is an independent snapshot read of a directory the plotter keeps
// writing to, so consecutive calls may observe different states.
type PlotRepository interface {
	// GetMetadata returns the job metadata.
	GetMetadata(ctx context.Context) (*model.JobMetadata, error)
	// GetProgressIndex returns the completed units counter written by the plotter.
	GetProgressIndex(ctx context.Context) (int64, error)
	// ListUnits returns the unit files ordered by their numeric index.
	ListUnits(ctx context.Context) ([]model.UnitFile, error)
	// ListTempUnits returns the unit files being written, ordered by name.
	ListTempUnits(ctx context.Context) ([]model.UnitFile, error)
}

// ConfigRepository is the interface for loading monitor configuration.
type ConfigRepository interface {
	GetConfig(ctx context.Context, path string) (*model.MonitorConfig, error)
}
