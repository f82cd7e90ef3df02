package model

import "errors"

var (
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrMetadataMissing is returned when a required metadata or counter file
	// has not been written yet.
	ErrMetadataMissing = errors.New("metadata missing")
	// ErrMetadataCorrupt is returned when a metadata or counter file exists but
	// can't be decoded or lacks required fields.
	ErrMetadataCorrupt = errors.New("metadata corrupt")
	// ErrUnitVanished is returned when a listed unit file disappears before it
	// could be inspected (the writer renamed it in between).
	ErrUnitVanished = errors.New("unit file vanished")
	// ErrRetriesExhausted is returned when recoverable errors exceeded the retry budget.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// IsRecoverable returns true when the error is expected while the plotting job
// is still settling and sampling should be retried.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMetadataMissing) ||
		errors.Is(err, ErrMetadataCorrupt) ||
		errors.Is(err, ErrUnitVanished)
}
