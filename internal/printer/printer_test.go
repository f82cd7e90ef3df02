package printer_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/printer"
)

var sampledAt = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func snapshotFixture() model.Snapshot {
	eta := sampledAt.Add(17 * time.Minute)
	return model.Snapshot{
		Directory:       "/plots",
		Variant:         model.VariantH9,
		CompletedUnits:  2,
		TotalUnits:      4,
		UnitSizeBytes:   16 * model.GiB,
		InFlight:        &model.InFlightUnit{Name: "postdata_2.bin.dtmp", SizeBytes: 8 * model.GiB, Percent: 50},
		ThroughputMiBps: 32,
		ETA:             &eta,
		SampledAt:       sampledAt,
	}
}

func TestTablePrinterPrintSnapshot(t *testing.T) {
	tests := map[string]struct {
		snapshot    func() model.Snapshot
		clear       bool
		expContains []string
		expMissing  []string
	}{
		"In flight unit should be shown with its progress": {
			snapshot: snapshotFixture,
			expContains: []string{
				"Monitoring folder: /plots\n",
				"Plotter type: H9\n",
				"Plotting speed: 32.00 MiB/s\n",
				"Total files to be written: 4\n",
				"Written: 40 GiB / 64 GiB\n",
				"Overall progress: 50.00%\n",
				"Progress: [" + strings.Repeat("=", 25) + strings.Repeat("-", 25) + "]\n",
				"Current file: postdata_2.bin.dtmp (50.00% complete)\n",
				"Estimated completion time: 2026-10-19 10:17:00 UTC (17 minutes from now)\n",
			},
			expMissing: []string{"\033[2J"},
		},
		"No in flight unit should be awaiting the next one": {
			snapshot: func() model.Snapshot {
				s := snapshotFixture()
				s.InFlight = nil
				return s
			},
			expContains: []string{"Current file complete, awaiting next\n"},
		},
		"Done plot should show all files complete": {
			snapshot: func() model.Snapshot {
				s := snapshotFixture()
				s.InFlight = nil
				s.CompletedUnits = 4
				return s
			},
			expContains: []string{
				"Overall progress: 100.00%\n",
				"All files complete\n",
				"Progress: [" + strings.Repeat("=", 50) + "]\n",
			},
		},
		"Missing ETA should be unpredictable": {
			snapshot: func() model.Snapshot {
				s := snapshotFixture()
				s.ThroughputMiBps = 0
				s.ETA = nil
				return s
			},
			expContains: []string{"Estimated completion time: Unable to predict (speed is 0)\n"},
		},
		"Huge plots should not overflow the written bytes": {
			snapshot: func() model.Snapshot {
				s := snapshotFixture()
				s.InFlight = nil
				s.CompletedUnits = 3
				s.TotalUnits = 1 << 40
				s.UnitSizeBytes = 64*model.GiB + 1
				return s
			},
			expContains: []string{"Written: 192 GiB / 64 ZiB\n"},
		},
		"Clear screen should reset the terminal first": {
			snapshot:    snapshotFixture,
			clear:       true,
			expContains: []string{"\033[H\033[2JMonitoring folder: /plots\n"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			p := printer.NewTablePrinter(printer.TablePrinterConfig{
				Writer:      &buf,
				ClearScreen: test.clear,
			})

			err := p.PrintSnapshot(test.snapshot())
			require.NoError(t, err)

			out := buf.String()
			for _, exp := range test.expContains {
				assert.Contains(t, out, exp)
			}
			for _, exp := range test.expMissing {
				assert.NotContains(t, out, exp)
			}
		})
	}
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(printer.TablePrinterConfig{Writer: &buf})

	err := p.PrintMessage("Plotting completed!")
	require.NoError(t, err)
	assert.Equal(t, "Plotting completed!", strings.TrimSpace(buf.String()))
}

func TestJSONPrinterPrintSnapshot(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	require.NoError(t, p.PrintSnapshot(snapshotFixture()))
	require.NoError(t, p.PrintMessage("Plotting completed!"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "snapshot", got["type"])
	assert.Equal(t, "h9", got["variant"])
	assert.Equal(t, float64(2), got["completed_units"])
	assert.Equal(t, float64(50), got["overall_percent"])
	assert.Equal(t, false, got["done"])
	assert.Equal(t, "2026-10-19T10:17:00Z", got["eta"])
	assert.Equal(t, map[string]any{
		"name":       "postdata_2.bin.dtmp",
		"size_bytes": float64(8 * model.GiB),
		"percent":    float64(50),
	}, got["in_flight"])

	assert.JSONEq(t, `{"type":"message","message":"Plotting completed!"}`, lines[1])
}

func TestProgressBar(t *testing.T) {
	tests := map[string]struct {
		completed  int64
		total      int64
		expDone    int
		expPending int
	}{
		"Nothing done": {
			completed:  0,
			total:      10,
			expDone:    0,
			expPending: 20,
		},
		"Half done": {
			completed:  5,
			total:      10,
			expDone:    10,
			expPending: 10,
		},
		"Partial cells are floored": {
			completed:  1,
			total:      3,
			expDone:    6,
			expPending: 14,
		},
		"Everything done": {
			completed:  10,
			total:      10,
			expDone:    20,
			expPending: 0,
		},
		"Over the total is full": {
			completed:  12,
			total:      10,
			expDone:    20,
			expPending: 0,
		},
		"Unknown total is empty": {
			completed:  3,
			total:      0,
			expDone:    0,
			expPending: 20,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			done, pending := printer.ProgressBar(test.completed, test.total, 20)
			assert.Len(t, done, test.expDone)
			assert.Len(t, pending, test.expPending)
		})
	}
}
