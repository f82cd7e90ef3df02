package sampler

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/slok/plotmon/internal/model"
)

// EstimateThroughput returns the write throughput in MiB/s using the last
// window units (by index order). The rate uses wall clock order because units
// can be finalized out of index order. Returns 0 when there are less than 2
// samples or all of them share the same timestamp.
func EstimateThroughput(units []model.UnitFile, window int) float64 {
	if window < 2 || len(units) < 2 {
		return 0
	}

	units = sortByIndex(units)
	samples := slices.Clone(units[max(0, len(units)-window):])
	slices.SortStableFunc(samples, func(a, b model.UnitFile) int {
		return a.ModTime.Compare(b.ModTime)
	})

	var total int64
	for _, s := range samples {
		total += s.SizeBytes
	}

	elapsed := samples[len(samples)-1].ModTime.Sub(samples[0].ModTime)
	if elapsed <= 0 {
		return 0
	}

	bytesPerSecond := float64(total) / elapsed.Seconds()
	return bytesPerSecond / model.MiB
}

var maxDurationSeconds = time.Duration(math.MaxInt64).Seconds()

// PredictCompletion returns when the job will finish at the given throughput.
// Returns nil when the throughput is 0 (unpredictable) or the ETA doesn't fit
// a time.Duration.
func PredictCompletion(totalUnits, completedUnits int64, throughputMiBps float64, unitSizeBytes int64, now time.Time) *time.Time {
	if throughputMiBps <= 0 {
		return nil
	}

	remainingBytes := float64(max(0, totalUnits-completedUnits)) * float64(unitSizeBytes)
	seconds := remainingBytes / (throughputMiBps * model.MiB)
	if seconds >= maxDurationSeconds {
		return nil
	}
	eta := now.Add(time.Duration(seconds * float64(time.Second)))

	return &eta
}

// sortByIndex is used to make sure the window is taken from the most recent indexes.
func sortByIndex(units []model.UnitFile) []model.UnitFile {
	if slices.IsSortedFunc(units, compareIndex) {
		return units
	}

	sorted := slices.Clone(units)
	slices.SortFunc(sorted, compareIndex)
	return sorted
}

func compareIndex(a, b model.UnitFile) int {
	return cmp.Compare(a.Index, b.Index)
}
