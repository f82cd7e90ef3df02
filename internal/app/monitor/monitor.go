package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/printer"
)

// Sampler knows how to get the plotting progress.
type Sampler interface {
	Sample(ctx context.Context) (*model.Snapshot, error)
}

// Sleeper waits between polls.
type Sleeper interface {
	// Sleep waits d or until the context is done, in that case it returns the context error.
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerSleeper is a Sleeper based on real timers.
type TimerSleeper struct{}

func (TimerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ServiceConfig is the configuration for the monitor service.
type ServiceConfig struct {
	Sampler    Sampler
	Printer    printer.Printer
	Sleeper    Sleeper
	Interval   time.Duration
	MaxRetries int
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Sampler == nil {
		return fmt.Errorf("sampler is required")
	}

	if c.Printer == nil {
		return fmt.Errorf("printer is required")
	}

	if c.Sleeper == nil {
		c.Sleeper = TimerSleeper{}
	}

	if c.Interval == 0 {
		c.Interval = 5 * time.Second
	}

	if c.Interval < 0 {
		return fmt.Errorf("interval can't be negative: %w", model.ErrNotValid)
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries can't be negative: %w", model.ErrNotValid)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Monitor"})

	return nil
}

// Service polls the plotting progress until the plot is complete.
type Service struct {
	sampler    Sampler
	printer    printer.Printer
	sleeper    Sleeper
	interval   time.Duration
	maxRetries int
	logger     log.Logger
}

// NewService creates a new monitor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		sampler:    cfg.Sampler,
		printer:    cfg.Printer,
		sleeper:    cfg.Sleeper,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
		logger:     cfg.Logger,
	}, nil
}

// Result is the outcome of a monitoring session.
type Result struct {
	// State is the state the session stopped at.
	State State
	// Polls is the number of sampling passes done.
	Polls int
	// Last is the last snapshot sampled, nil if none succeeded.
	Last *model.Snapshot
}

// Run polls and prints the plotting progress until the plot is complete, the
// retry budget is exhausted, an unexpected error happens or the context is canceled.
// Cancellation is a graceful stop and doesn't return an error.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	m := newMachine(s.maxRetries)
	res := &Result{State: m.state}

	for {
		if ctx.Err() != nil {
			return s.stop(res)
		}

		snapshot, err := s.sampler.Sample(ctx)
		res.Polls++
		if err != nil && ctx.Err() != nil {
			return s.stop(res)
		}

		if err == nil {
			res.Last = snapshot
			if perr := s.printer.PrintSnapshot(*snapshot); perr != nil {
				err = fmt.Errorf("could not print snapshot: %w", perr)
			}
		}

		res.State = m.next(snapshot, err)
		switch res.State {
		case StatePolling:
			inFlight := ""
			if snapshot.InFlight != nil {
				inFlight = snapshot.InFlight.Name
			}
			s.logger.Infof("Speed: %.2f MiB/s, Progress: %.2f%%, Current file: %s", snapshot.ThroughputMiBps, snapshot.OverallPercent(), inFlight)

		case StateRetrying:
			s.retryMessage(err, m.retries)

		case StateCompleted:
			s.logger.Infof("Plotting completed")
			return res, s.printer.PrintMessage("\nPlotting completed!")

		case StateFatalStop:
			if !model.IsRecoverable(err) {
				s.logger.Errorf("An unexpected error occurred: %s", err)
				return res, fmt.Errorf("unexpected error: %w", err)
			}

			s.retryMessage(err, m.retries)
			err = exhaustedError(err, m.retries)
			s.logger.Errorf("%s", err)
			return res, err
		}

		if err := s.sleeper.Sleep(ctx, s.interval); err != nil {
			return s.stop(res)
		}
	}
}

func (s *Service) retryMessage(err error, attempt int) {
	msg := fmt.Sprintf("Error: %s. Retrying in %s... (Attempt %d/%d)", err, s.interval, attempt, s.maxRetries)
	s.logger.Warningf("%s", msg)
	if perr := s.printer.PrintMessage(msg); perr != nil {
		s.logger.Errorf("could not print message: %s", perr)
	}
}

func (s *Service) stop(res *Result) (*Result, error) {
	res.State = StateStopped
	s.logger.Infof("Monitoring terminated by user")
	if err := s.printer.PrintMessage("\nShutting down gracefully..."); err != nil {
		s.logger.Errorf("could not print message: %s", err)
	}

	return res, nil
}

func exhaustedError(err error, attempts int) error {
	switch {
	case errors.Is(err, model.ErrMetadataMissing):
		return fmt.Errorf("required metadata files not found after %d attempts: %w: %w", attempts, model.ErrRetriesExhausted, err)
	case errors.Is(err, model.ErrMetadataCorrupt):
		return fmt.Errorf("invalid JSON in metadata files after %d attempts: %w: %w", attempts, model.ErrRetriesExhausted, err)
	default:
		return fmt.Errorf("plot directory kept failing after %d attempts: %w: %w", attempts, model.ErrRetriesExhausted, err)
	}
}
