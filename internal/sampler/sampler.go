package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/storage"
)

// SamplerConfig is the configuration for the progress sampler.
type SamplerConfig struct {
	// Directory is only used to label the snapshots.
	Directory    string
	Repository   storage.PlotRepository
	Variant      model.Variant
	SampleWindow int
	// TimeNow is used to stamp snapshots and predict the ETA.
	TimeNow func() time.Time
	Logger  log.Logger
}

func (c *SamplerConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Variant == "" {
		c.Variant = model.VariantStandard
	}

	if err := c.Variant.Validate(); err != nil {
		return err
	}

	if c.SampleWindow == 0 {
		c.SampleWindow = 10
	}

	if c.SampleWindow < 2 {
		return fmt.Errorf("sample window must be at least 2: %w", model.ErrNotValid)
	}

	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sampler.Sampler", "variant": c.Variant})

	return nil
}

// Sampler reduces the plot directory state into progress snapshots.
type Sampler struct {
	dir      string
	repo     storage.PlotRepository
	strategy Strategy
	window   int
	timeNow  func() time.Time
	logger   log.Logger
}

// NewSampler creates a new progress sampler.
func NewSampler(cfg SamplerConfig) (*Sampler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	strategy, err := NewStrategy(cfg.Variant, cfg.Repository, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("could not create %s strategy: %w", cfg.Variant, err)
	}

	return &Sampler{
		dir:      cfg.Directory,
		repo:     cfg.Repository,
		strategy: strategy,
		window:   cfg.SampleWindow,
		timeNow:  cfg.TimeNow,
		logger:   cfg.Logger,
	}, nil
}

// Sample runs a sampling pass and returns the progress snapshot.
// Metadata is loaded on every pass so it can show up after the monitor started.
func (s *Sampler) Sample(ctx context.Context) (*model.Snapshot, error) {
	md, err := s.repo.GetMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get metadata: %w", err)
	}

	units, err := s.repo.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list units: %w", err)
	}
	s.logger.Debugf("%d unit files listed", len(units))

	d, err := s.strategy.Detect(ctx, *md, units)
	if err != nil {
		return nil, fmt.Errorf("could not detect progress: %w", err)
	}

	total := md.TotalUnits()
	completed := d.CompletedUnits
	if completed > total {
		s.logger.Debugf("completed units %d over total %d, clamping", completed, total)
		completed = total
	}

	throughput := EstimateThroughput(d.Finished, s.window)
	s.logger.Debugf("throughput %.2f MiB/s from %d finished units", throughput, len(d.Finished))

	now := s.timeNow()
	return &model.Snapshot{
		Directory:       s.dir,
		Variant:         s.strategy.Variant(),
		CompletedUnits:  completed,
		TotalUnits:      total,
		UnitSizeBytes:   md.MaxFileSizeBytes,
		InFlight:        d.InFlight,
		ThroughputMiBps: throughput,
		ETA:             PredictCompletion(total, completed, throughput, md.MaxFileSizeBytes, now),
		SampledAt:       now,
	}, nil
}
