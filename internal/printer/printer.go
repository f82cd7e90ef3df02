package printer

import "github.com/slok/plotmon/internal/model"

// Printer knows how to print plotting progress in different formats.
type Printer interface {
	PrintSnapshot(snapshot model.Snapshot) error
	PrintMessage(msg string) error
}
