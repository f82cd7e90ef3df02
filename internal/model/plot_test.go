package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/plotmon/internal/model"
)

func TestJobMetadataTotalUnits(t *testing.T) {
	tests := map[string]struct {
		metadata model.JobMetadata
		expTotal int64
		expErr   bool
	}{
		"A single 64GiB file per unit should be one file per unit": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 68719476736, NumUnits: 4},
			expTotal: 4,
		},
		"Smaller files should split the units": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 2 * model.GiB, NumUnits: 4},
			expTotal: 128,
		},
		"Non multiple file size should floor the division": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 3 * model.GiB, NumUnits: 1},
			expTotal: 21,
		},
		"Zero max file size should fail": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 0, NumUnits: 4},
			expErr:   true,
		},
		"Negative num units should fail": {
			metadata: model.JobMetadata{MaxFileSizeBytes: model.GiB, NumUnits: -1},
			expErr:   true,
		},
		"File size bigger than the whole plot should fail": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 128 * model.GiB, NumUnits: 1},
			expErr:   true,
		},
		"Overflowing totals should fail": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 1, NumUnits: 1 << 40},
			expErr:   true,
		},
		"Huge num units with big files should not overflow": {
			metadata: model.JobMetadata{MaxFileSizeBytes: 64 * model.GiB, NumUnits: 1 << 40},
			expTotal: 1 << 40,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.metadata.Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				assert.Equal(t, int64(0), test.metadata.TotalUnits())
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, test.expTotal, test.metadata.TotalUnits())
		})
	}
}

func TestNewInFlightUnit(t *testing.T) {
	tests := map[string]struct {
		size    int64
		maxSize int64
		exp     float64
	}{
		"Empty file should be 0%": {
			size:    0,
			maxSize: 1000,
			exp:     0,
		},
		"Half written file should be 50%": {
			size:    500,
			maxSize: 1000,
			exp:     50,
		},
		"Full file should be 100%": {
			size:    1000,
			maxSize: 1000,
			exp:     100,
		},
		"Oversized file should be capped": {
			size:    1500,
			maxSize: 1000,
			exp:     100,
		},
		"Unknown max size should be 0%": {
			size:    1500,
			maxSize: 0,
			exp:     0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			u := model.NewInFlightUnit("postdata_3.bin", test.size, test.maxSize)
			assert.Equal(t, "postdata_3.bin", u.Name)
			assert.InDelta(t, test.exp, u.Percent, 0.0001)
		})
	}
}

func TestSnapshotProgress(t *testing.T) {
	tests := map[string]struct {
		snapshot   model.Snapshot
		expDone    bool
		expPercent float64
	}{
		"Nothing written": {
			snapshot:   model.Snapshot{CompletedUnits: 0, TotalUnits: 8},
			expPercent: 0,
		},
		"Partially written": {
			snapshot:   model.Snapshot{CompletedUnits: 2, TotalUnits: 8},
			expPercent: 25,
		},
		"All written should be done": {
			snapshot:   model.Snapshot{CompletedUnits: 8, TotalUnits: 8},
			expDone:    true,
			expPercent: 100,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expDone, test.snapshot.Done())
			assert.InDelta(t, test.expPercent, test.snapshot.OverallPercent(), 0.0001)
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, model.IsRecoverable(model.ErrMetadataMissing))
	assert.True(t, model.IsRecoverable(model.ErrMetadataCorrupt))
	assert.True(t, model.IsRecoverable(model.ErrUnitVanished))
	assert.False(t, model.IsRecoverable(model.ErrNotValid))
	assert.False(t, model.IsRecoverable(assert.AnError))
}

func TestParseInterval(t *testing.T) {
	tests := map[string]struct {
		interval string
		exp      time.Duration
		expErr   bool
	}{
		"A bare number should be seconds": {
			interval: "5",
			exp:      5 * time.Second,
		},
		"A duration should be parsed": {
			interval: "1m30s",
			exp:      90 * time.Second,
		},
		"Sub second durations should be parsed": {
			interval: "250ms",
			exp:      250 * time.Millisecond,
		},
		"Spaces should be ignored": {
			interval: " 2 ",
			exp:      2 * time.Second,
		},
		"Negative seconds should fail": {
			interval: "-1",
			expErr:   true,
		},
		"Overflowing seconds should fail": {
			interval: "9223372036854775807",
			expErr:   true,
		},
		"Garbage should fail": {
			interval: "soon",
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := model.ParseInterval(test.interval)
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}
