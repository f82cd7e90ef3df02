package sampler

import (
	"context"
	"fmt"

	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/storage"
)

// Detection is the result of inspecting the plot directory units.
type Detection struct {
	// CompletedUnits is the number of finished units.
	CompletedUnits int64
	// Finished are the finished unit files usable to sample the throughput.
	Finished []model.UnitFile
	// InFlight is the unit being written, nil if none.
	InFlight *model.InFlightUnit
}

// Strategy knows how to detect the completed units and the in-flight unit of a plot directory.
type Strategy interface {
	Variant() model.Variant
	Detect(ctx context.Context, md model.JobMetadata, units []model.UnitFile) (*Detection, error)
}

// NewStrategy returns the detection strategy for a variant.
func NewStrategy(variant model.Variant, repo storage.PlotRepository, logger log.Logger) (Strategy, error) {
	if logger == nil {
		logger = log.Noop
	}

	switch variant {
	case model.VariantStandard:
		return SizeInferenceStrategy{}, nil
	case model.VariantH9:
		if repo == nil {
			return nil, fmt.Errorf("repository is required for %s variant", variant)
		}
		return IndexFileStrategy{repo: repo, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown variant %q: %w", variant, model.ErrNotValid)
	}
}

// SizeInferenceStrategy has no counter file, the last unit on the listing is
// either finished (full size) or the one being written.
type SizeInferenceStrategy struct{}

func (SizeInferenceStrategy) Variant() model.Variant { return model.VariantStandard }

func (SizeInferenceStrategy) Detect(_ context.Context, md model.JobMetadata, units []model.UnitFile) (*Detection, error) {
	if len(units) == 0 {
		return &Detection{Finished: []model.UnitFile{}}, nil
	}

	last := units[len(units)-1]
	if last.SizeBytes == md.MaxFileSizeBytes {
		return &Detection{
			CompletedUnits: int64(len(units)),
			Finished:       units,
		}, nil
	}

	inFlight := model.NewInFlightUnit(last.Name, last.SizeBytes, md.MaxFileSizeBytes)
	return &Detection{
		CompletedUnits: int64(len(units) - 1),
		Finished:       units[:len(units)-1],
		InFlight:       &inFlight,
	}, nil
}

// IndexFileStrategy reads the completed count from the plotter counter file and
// the in-flight unit from the temp extension files. The counter may lag or lead
// the listing, the listing is only used for the throughput.
type IndexFileStrategy struct {
	repo   storage.PlotRepository
	logger log.Logger
}

func (IndexFileStrategy) Variant() model.Variant { return model.VariantH9 }

func (s IndexFileStrategy) Detect(ctx context.Context, md model.JobMetadata, units []model.UnitFile) (*Detection, error) {
	completed, err := s.repo.GetProgressIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get progress index: %w", err)
	}

	temps, err := s.repo.ListTempUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list temp units: %w", err)
	}

	d := &Detection{
		CompletedUnits: completed,
		Finished:       units,
	}

	if len(temps) > 0 {
		if len(temps) > 1 {
			s.logger.Warningf("%d temp unit files found, using %s", len(temps), temps[0].Name)
		}
		inFlight := model.NewInFlightUnit(temps[0].Name, temps[0].SizeBytes, md.MaxFileSizeBytes)
		d.InFlight = &inFlight
	}

	return d, nil
}
