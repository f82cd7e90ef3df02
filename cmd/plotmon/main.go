package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/plotmon/cmd/plotmon/commands"
	"github.com/slok/plotmon/internal/log"
	loglogrus "github.com/slok/plotmon/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("plotmon", "Plotting progress monitor.")
	app.Version(Version)
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	monitorCmd := commands.NewMonitorCommand(rootCmd, app)

	cmds := map[string]commands.Command{
		monitorCmd.Name(): monitorCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr
	if f, ok := stdout.(*os.File); ok {
		rootCmd.IsTerminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	// The monitor redraws the terminal, logs on stderr would be wiped or mixed
	// with the output, so they are only shown with --debug or sent to a log file.
	if rootCmd.LogFile == "" && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	logger, closeLog, err := getLogger(*rootCmd)
	if err != nil {
		return fmt.Errorf("could not set up logger: %w", err)
	}
	defer closeLog()
	rootCmd.Logger = logger

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger and a function to release its sink.
func getLogger(config commands.RootCommand) (log.Logger, func(), error) {
	if config.NoLog {
		return log.Noop, func() {}, nil
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	closeLog := func() {}
	if config.LogFile != "" {
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open log file: %w", err)
		}
		logrusLog.Out = f
		closeLog = func() { _ = f.Close() }
	}
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		colors := !config.NoColor && config.LogFile == ""
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   colors,
			DisableColors: !colors,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger, closeLog, nil
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
