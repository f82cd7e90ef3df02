package printer

import (
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/slok/plotmon/internal/model"
)

const (
	// ProgressBarWidth is the number of cells of the overall progress bar.
	ProgressBarWidth = 50

	clearScreen = "\033[H\033[2J"
)

var (
	barDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	barPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TablePrinterConfig is the configuration for the table printer.
type TablePrinterConfig struct {
	Writer io.Writer
	// ClearScreen clears the terminal before every snapshot so it refreshes in place.
	ClearScreen bool
	// Color colors the progress bar.
	Color bool
}

// TablePrinter prints plotting progress as human readable text.
type TablePrinter struct {
	writer      io.Writer
	clearScreen bool
	color       bool
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(cfg TablePrinterConfig) *TablePrinter {
	return &TablePrinter{
		writer:      cfg.Writer,
		clearScreen: cfg.ClearScreen,
		color:       cfg.Color,
	}
}

// PrintSnapshot prints the plotting progress.
func (t *TablePrinter) PrintSnapshot(s model.Snapshot) error {
	var b strings.Builder

	if t.clearScreen {
		b.WriteString(clearScreen)
	}

	var inFlightBytes int64
	if s.InFlight != nil {
		inFlightBytes = s.InFlight.SizeBytes
	}
	written := plotBytes(s.CompletedUnits, s.UnitSizeBytes, inFlightBytes)
	total := plotBytes(s.TotalUnits, s.UnitSizeBytes, 0)

	fmt.Fprintf(&b, "Monitoring folder: %s\n", s.Directory)
	fmt.Fprintf(&b, "Plotter type: %s\n", s.Variant.Label())
	fmt.Fprintf(&b, "Plotting speed: %.2f MiB/s\n", s.ThroughputMiBps)
	fmt.Fprintf(&b, "Total files to be written: %d\n", s.TotalUnits)
	fmt.Fprintf(&b, "Written: %s / %s\n", humanize.BigIBytes(written), humanize.BigIBytes(total))
	fmt.Fprintf(&b, "Overall progress: %.2f%%\n", s.OverallPercent())
	fmt.Fprintf(&b, "Progress: [%s]\n", t.progressBar(s.CompletedUnits, s.TotalUnits))

	switch {
	case s.InFlight != nil:
		fmt.Fprintf(&b, "Current file: %s (%.2f%% complete)\n", s.InFlight.Name, s.InFlight.Percent)
	case !s.Done():
		b.WriteString("Current file complete, awaiting next\n")
	default:
		b.WriteString("All files complete\n")
	}

	if s.ETA != nil {
		fmt.Fprintf(&b, "Estimated completion time: %s (%s)\n", FormatTimestamp(*s.ETA), TimeUntil(*s.ETA, s.SampledAt))
	} else {
		b.WriteString("Estimated completion time: Unable to predict (speed is 0)\n")
	}

	_, err := io.WriteString(t.writer, b.String())
	return err
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func (t *TablePrinter) progressBar(completed, total int64) string {
	done, pending := ProgressBar(completed, total, ProgressBarWidth)
	if !t.color {
		return done + pending
	}

	return barDoneStyle.Render(done) + barPendingStyle.Render(pending)
}

// ProgressBar returns the filled and pending parts of a width cells progress bar.
func ProgressBar(completed, total int64, width int) (done, pending string) {
	filled := 0
	if total > 0 {
		filled = int(int64(width) * min(max(completed, 0), total) / total)
	}

	return strings.Repeat("=", filled), strings.Repeat("-", width-filled)
}

// plotBytes returns units*unitSize+extra bytes, big plots don't fit an int64.
func plotBytes(units, unitSize, extra int64) *big.Int {
	b := new(big.Int).Mul(big.NewInt(max(units, 0)), big.NewInt(max(unitSize, 0)))
	return b.Add(b, big.NewInt(max(extra, 0)))
}
