package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/storage"
)

var _ storage.PlotRepository = &Repository{}

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.PlotRepository.
// The state can be mutated while it's being read, the same way a plotter
// mutates a real plot directory.
type Repository struct {
	metadata *model.JobMetadata
	progress *int64
	units    map[string]model.UnitFile
	temps    map[string]model.UnitFile
	mu       sync.RWMutex
	logger   log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		units:  make(map[string]model.UnitFile),
		temps:  make(map[string]model.UnitFile),
		logger: cfg.Logger,
	}, nil
}

// SetMetadata sets the job metadata, nil removes it.
func (r *Repository) SetMetadata(md *model.JobMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if md == nil {
		r.metadata = nil
		return
	}
	mdCopy := *md
	r.metadata = &mdCopy
}

// SetProgressIndex sets the completed units counter.
func (r *Repository) SetProgressIndex(idx int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = &idx
}

// PutUnit creates or updates a unit file.
func (r *Repository) PutUnit(u model.UnitFile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.units[u.Name] = u
	r.logger.Debugf("Stored unit in repository: %s", u.Name)
}

// PutTempUnit creates or updates a unit file that is being written.
func (r *Repository) PutTempUnit(u model.UnitFile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.temps[u.Name] = u
}

// PromoteTempUnit renames a temporary unit into a finished one.
func (r *Repository) PromoteTempUnit(tempName string, u model.UnitFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.temps[tempName]; !ok {
		return fmt.Errorf("temp unit %s: %w", tempName, model.ErrUnitVanished)
	}
	delete(r.temps, tempName)
	r.units[u.Name] = u

	return nil
}

// GetMetadata returns the job metadata.
func (r *Repository) GetMetadata(ctx context.Context) (*model.JobMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.metadata == nil {
		return nil, fmt.Errorf("metadata: %w", model.ErrMetadataMissing)
	}

	if err := r.metadata.Validate(); err != nil {
		return nil, fmt.Errorf("metadata: %w: %w", model.ErrMetadataCorrupt, err)
	}

	mdCopy := *r.metadata
	return &mdCopy, nil
}

// GetProgressIndex returns the completed units counter.
func (r *Repository) GetProgressIndex(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.progress == nil {
		return 0, fmt.Errorf("progress: %w", model.ErrMetadataMissing)
	}
	if *r.progress < 0 {
		return 0, fmt.Errorf("progress: negative counter %d: %w", *r.progress, model.ErrMetadataCorrupt)
	}

	return *r.progress, nil
}

// ListUnits returns the unit files ordered by their numeric index.
func (r *Repository) ListUnits(ctx context.Context) ([]model.UnitFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]model.UnitFile, 0, len(r.units))
	for _, u := range r.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].Index < units[j].Index
	})

	return units, nil
}

// ListTempUnits returns the unit files being written, ordered by name.
func (r *Repository) ListTempUnits(ctx context.Context) ([]model.UnitFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	temps := make([]model.UnitFile, 0, len(r.temps))
	for _, u := range r.temps {
		temps = append(temps, u)
	}
	sort.Slice(temps, func(i, j int) bool {
		return temps[i].Name < temps[j].Name
	})

	return temps, nil
}
