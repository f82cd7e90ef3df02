package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/plotmon/internal/model"
)

// JSONPrinter prints plotting progress as JSON lines, one object per print.
type JSONPrinter struct {
	enc *json.Encoder
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{enc: json.NewEncoder(w)}
}

// snapshotOutput represents a progress snapshot output.
type snapshotOutput struct {
	Type            string          `json:"type"`
	Directory       string          `json:"directory"`
	Variant         string          `json:"variant"`
	CompletedUnits  int64           `json:"completed_units"`
	TotalUnits      int64           `json:"total_units"`
	UnitSizeBytes   int64           `json:"unit_size_bytes"`
	OverallPercent  float64         `json:"overall_percent"`
	ThroughputMiBps float64         `json:"throughput_mib_s"`
	InFlight        *inFlightOutput `json:"in_flight"`
	ETA             *time.Time      `json:"eta"`
	Done            bool            `json:"done"`
	SampledAt       time.Time       `json:"sampled_at"`
}

// inFlightOutput represents the unit being written.
type inFlightOutput struct {
	Name      string  `json:"name"`
	SizeBytes int64   `json:"size_bytes"`
	Percent   float64 `json:"percent"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PrintSnapshot prints the plotting progress in JSON format.
func (j *JSONPrinter) PrintSnapshot(s model.Snapshot) error {
	output := snapshotOutput{
		Type:            "snapshot",
		Directory:       s.Directory,
		Variant:         string(s.Variant),
		CompletedUnits:  s.CompletedUnits,
		TotalUnits:      s.TotalUnits,
		UnitSizeBytes:   s.UnitSizeBytes,
		OverallPercent:  s.OverallPercent(),
		ThroughputMiBps: s.ThroughputMiBps,
		Done:            s.Done(),
		SampledAt:       s.SampledAt.UTC(),
	}

	if s.InFlight != nil {
		output.InFlight = &inFlightOutput{
			Name:      s.InFlight.Name,
			SizeBytes: s.InFlight.SizeBytes,
			Percent:   s.InFlight.Percent,
		}
	}

	if s.ETA != nil {
		utcTime := s.ETA.UTC()
		output.ETA = &utcTime
	}

	return j.enc.Encode(output)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.enc.Encode(messageOutput{Type: "message", Message: msg})
}
