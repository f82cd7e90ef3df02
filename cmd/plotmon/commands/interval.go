package commands

import (
	"time"

	"github.com/slok/plotmon/internal/model"
)

// intervalValue is a kingpin value for poll intervals, bare numbers are seconds.
type intervalValue struct {
	d *time.Duration
}

func (v intervalValue) Set(s string) error {
	d, err := model.ParseInterval(s)
	if err != nil {
		return err
	}
	*v.d = d
	return nil
}

func (v intervalValue) String() string { return v.d.String() }
