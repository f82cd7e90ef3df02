package model

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

const (
	// MiB is a binary mebibyte.
	MiB = 1024 * 1024
	// GiB is a binary gibibyte.
	GiB = 1024 * MiB
	// SpaceUnitBytes is the amount of storage a single space unit accounts for.
	SpaceUnitBytes = 64 * GiB
)

// Variant is the strategy used to detect the in-flight unit and the completed count.
type Variant string

const (
	// VariantStandard infers progress from the unit file sizes.
	VariantStandard Variant = "standard"
	// VariantH9 reads the completed count from the progress counter file and
	// detects the in-flight unit by its temp extension.
	VariantH9 Variant = "h9"
)

// Label returns the human name of the variant.
func (v Variant) Label() string {
	switch v {
	case VariantH9:
		return "H9"
	case VariantStandard:
		return "Standard"
	default:
		return string(v)
	}
}

// Validate validates the variant.
func (v Variant) Validate() error {
	switch v {
	case VariantStandard, VariantH9:
		return nil
	default:
		return fmt.Errorf("unknown variant %q: %w", v, ErrNotValid)
	}
}

// JobMetadata is the plotting job metadata written by the plotter.
type JobMetadata struct {
	// MaxFileSizeBytes is the size every finished unit file has.
	MaxFileSizeBytes int64
	// NumUnits is the number of space units being plotted.
	NumUnits int64
}

// Validate validates the job metadata.
func (m JobMetadata) Validate() error {
	if m.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("max file size must be positive, got %d: %w", m.MaxFileSizeBytes, ErrNotValid)
	}

	if m.NumUnits <= 0 {
		return fmt.Errorf("num units must be positive, got %d: %w", m.NumUnits, ErrNotValid)
	}

	if _, err := m.totalUnits(); err != nil {
		return err
	}

	return nil
}

// TotalUnits returns the number of unit files the job will write once finished.
// Returns 0 on invalid metadata.
func (m JobMetadata) TotalUnits() int64 {
	total, err := m.totalUnits()
	if err != nil {
		return 0
	}
	return total
}

func (m JobMetadata) totalUnits() (int64, error) {
	if m.MaxFileSizeBytes <= 0 || m.NumUnits <= 0 {
		return 0, fmt.Errorf("metadata values must be positive: %w", ErrNotValid)
	}

	hi, lo := bits.Mul64(uint64(m.NumUnits), SpaceUnitBytes)
	if hi >= uint64(m.MaxFileSizeBytes) {
		return 0, fmt.Errorf("total units overflow: %w", ErrNotValid)
	}

	q, _ := bits.Div64(hi, lo, uint64(m.MaxFileSizeBytes))
	if q > math.MaxInt64 {
		return 0, fmt.Errorf("total units overflow: %w", ErrNotValid)
	}

	if q == 0 {
		return 0, fmt.Errorf("max file size %d is bigger than the plot size: %w", m.MaxFileSizeBytes, ErrNotValid)
	}

	return int64(q), nil
}

// UnitFile is a unit file found on the plot directory.
type UnitFile struct {
	Name      string
	Index     int64
	SizeBytes int64
	ModTime   time.Time
}

// InFlightUnit is the unit file currently being written.
type InFlightUnit struct {
	Name      string
	SizeBytes int64
	// Percent is the unit completeness in the [0, 100] range.
	Percent float64
}

// NewInFlightUnit returns the in-flight unit for a unit file being filled up to maxSize bytes.
func NewInFlightUnit(name string, size, maxSize int64) InFlightUnit {
	pct := 0.0
	if maxSize > 0 && size > 0 {
		pct = math.Min(float64(size)/float64(maxSize)*100, 100)
	}

	return InFlightUnit{
		Name:      name,
		SizeBytes: size,
		Percent:   pct,
	}
}

// Snapshot is the plotting progress computed from a single sampling pass.
type Snapshot struct {
	Directory       string
	Variant         Variant
	CompletedUnits  int64
	TotalUnits      int64
	UnitSizeBytes   int64
	InFlight        *InFlightUnit
	ThroughputMiBps float64
	// ETA is nil when completion can't be predicted.
	ETA       *time.Time
	SampledAt time.Time
}

// Done returns true when all the units have been written.
func (s Snapshot) Done() bool {
	return s.CompletedUnits >= s.TotalUnits
}

// OverallPercent returns the job completeness in the [0, 100] range.
func (s Snapshot) OverallPercent() float64 {
	if s.TotalUnits <= 0 {
		return 0
	}

	return float64(s.CompletedUnits) / float64(s.TotalUnits) * 100
}
