package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/ulid/v2"

	"github.com/slok/plotmon/internal/app/monitor"
	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/printer"
	"github.com/slok/plotmon/internal/sampler"
	"github.com/slok/plotmon/internal/storage/io"
	"github.com/slok/plotmon/internal/storage/plotfs"
)

type MonitorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	directory    string
	variant      string
	interval     time.Duration
	maxRetries   int
	sampleWindow int
	format       string

	variantSet      bool
	intervalSet     bool
	maxRetriesSet   bool
	sampleWindowSet bool
}

// NewMonitorCommand returns the monitor command.
func NewMonitorCommand(rootCmd *RootCommand, app *kingpin.Application) *MonitorCommand {
	c := &MonitorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("monitor", "Monitor the progress of a plot directory.").Default()
	c.Cmd.Arg("directory", "Plot directory (required unless set on the config file).").StringVar(&c.directory)
	c.Cmd.Flag("interval", "Time between polls in seconds (or a duration like 1m30s).").Short('i').Default("5").IsSetByUser(&c.intervalSet).SetValue(intervalValue{d: &c.interval})
	c.Cmd.Flag("variant", "Plotter variant (standard infers progress from file sizes, h9 reads the progress file).").Default(string(model.VariantStandard)).IsSetByUser(&c.variantSet).EnumVar(&c.variant, string(model.VariantStandard), string(model.VariantH9))
	c.Cmd.Flag("max-retries", "Consecutive metadata failures tolerated before stopping.").Default("3").IsSetByUser(&c.maxRetriesSet).IntVar(&c.maxRetries)
	c.Cmd.Flag("sample-window", "Number of most recent units used to compute the speed.").Default("10").IsSetByUser(&c.sampleWindowSet).IntVar(&c.sampleWindow)
	c.Cmd.Flag("format", "Output format (table, json).").Default("table").EnumVar(&c.format, "table", "json")

	return c
}

func (c MonitorCommand) Name() string { return c.Cmd.FullCommand() }

func (c MonitorCommand) Run(ctx context.Context) error {
	cfg, err := c.config(ctx)
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	logger := c.rootCmd.Logger.WithValues(log.Kv{
		"session": ulid.Make().String(),
		"dir":     cfg.Directory,
	})
	logger.Infof("Starting monitor with folder path: %s and interval: %s", cfg.Directory, cfg.Interval)

	repo, err := plotfs.NewRepository(plotfs.RepositoryConfig{
		FS:     os.DirFS(cfg.Directory),
		Layout: cfg.Layout,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	smp, err := sampler.NewSampler(sampler.SamplerConfig{
		Directory:    cfg.Directory,
		Repository:   repo,
		Variant:      cfg.Variant,
		SampleWindow: cfg.SampleWindow,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("could not create sampler: %w", err)
	}

	var p printer.Printer
	switch c.format {
	case "json":
		p = printer.NewJSONPrinter(c.rootCmd.Stdout)
	default: // table
		p = printer.NewTablePrinter(printer.TablePrinterConfig{
			Writer:      c.rootCmd.Stdout,
			ClearScreen: c.rootCmd.IsTerminal,
			Color:       c.rootCmd.IsTerminal && !c.rootCmd.NoColor,
		})
	}

	svc, err := monitor.NewService(monitor.ServiceConfig{
		Sampler:    smp,
		Printer:    p,
		Interval:   cfg.Interval,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("monitoring stopped: %w", err)
	}
	logger.Debugf("Monitor finished with %s state after %d polls", res.State, res.Polls)

	return nil
}

// config returns the monitor configuration, flags set by the user take
// precedence over the config file.
func (c MonitorCommand) config(ctx context.Context) (*model.MonitorConfig, error) {
	cfg, err := c.loadConfigFile(ctx)
	if err != nil {
		return nil, err
	}

	if c.directory != "" {
		cfg.Directory = c.directory
	}
	if cfg.Directory == "" {
		return nil, fmt.Errorf("plot directory is required as argument or on the config file: %w", model.ErrNotValid)
	}
	dir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %q: %w", cfg.Directory, err)
	}
	cfg.Directory = dir

	if c.variantSet {
		cfg.Variant = model.Variant(c.variant)
	}
	if c.intervalSet {
		cfg.Interval = c.interval
	}
	if c.maxRetriesSet {
		cfg.MaxRetries = c.maxRetries
	}
	if c.sampleWindowSet {
		cfg.SampleWindow = c.sampleWindow
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c MonitorCommand) loadConfigFile(ctx context.Context) (*model.MonitorConfig, error) {
	path, err := filepath.Abs(c.rootCmd.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path %q: %w", c.rootCmd.ConfigPath, err)
	}

	repo := io.NewConfigYAMLRepository(os.DirFS("/"))
	cfg, err := repo.GetConfig(ctx, strings.TrimPrefix(filepath.ToSlash(path), "/"))
	if err != nil {
		// The default config file is optional.
		if errors.Is(err, fs.ErrNotExist) && !c.rootCmd.ConfigPathSet {
			c.rootCmd.Logger.Debugf("No config file at %s, using defaults", path)
			def := io.DefaultConfig()
			return &def, nil
		}
		return nil, err
	}

	c.rootCmd.Logger.Debugf("Config loaded from %s", path)
	return cfg, nil
}
