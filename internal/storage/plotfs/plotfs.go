package plotfs

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/slok/plotmon/internal/log"
	"github.com/slok/plotmon/internal/model"
)

// RepositoryConfig is the configuration for the plot directory repository.
type RepositoryConfig struct {
	// FS is the plot directory filesystem (e.g. os.DirFS(dir)).
	FS     fs.FS
	Layout model.Layout
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.FS == nil {
		return fmt.Errorf("filesystem is required")
	}

	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.PlotFS"})

	return nil
}

// Repository reads the plot directory state written by the plotter.
type Repository struct {
	fs     fs.FS
	layout model.Layout
	logger log.Logger
}

// NewRepository creates a new plot directory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		fs:     cfg.FS,
		layout: cfg.Layout,
		logger: cfg.Logger,
	}, nil
}

// metadataJSON is the plotter metadata file format, other fields are ignored.
type metadataJSON struct {
	MaxFileSize *int64 `json:"MaxFileSize"`
	NumUnits    *int64 `json:"NumUnits"`
}

// progressJSON is the H9 plotter progress counter file format.
type progressJSON struct {
	FileIndex *int64 `json:"file_index"`
}

// GetMetadata loads the job metadata.
func (r *Repository) GetMetadata(ctx context.Context) (*model.JobMetadata, error) {
	var m metadataJSON
	if err := r.readJSON(ctx, r.layout.MetadataFile, &m); err != nil {
		return nil, err
	}

	if m.MaxFileSize == nil || m.NumUnits == nil {
		return nil, fmt.Errorf("%s: MaxFileSize and NumUnits are required: %w", r.layout.MetadataFile, model.ErrMetadataCorrupt)
	}

	md := model.JobMetadata{
		MaxFileSizeBytes: *m.MaxFileSize,
		NumUnits:         *m.NumUnits,
	}
	if err := md.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", r.layout.MetadataFile, model.ErrMetadataCorrupt, err)
	}

	return &md, nil
}

// GetProgressIndex loads the completed units counter.
func (r *Repository) GetProgressIndex(ctx context.Context) (int64, error) {
	var p progressJSON
	if err := r.readJSON(ctx, r.layout.ProgressFile, &p); err != nil {
		return 0, err
	}

	if p.FileIndex == nil {
		return 0, fmt.Errorf("%s: file_index is required: %w", r.layout.ProgressFile, model.ErrMetadataCorrupt)
	}

	if *p.FileIndex < 0 {
		return 0, fmt.Errorf("%s: file_index can't be negative, got %d: %w", r.layout.ProgressFile, *p.FileIndex, model.ErrMetadataCorrupt)
	}

	return *p.FileIndex, nil
}

func (r *Repository) readJSON(ctx context.Context, name string, v any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := fs.ReadFile(r.fs, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s not found: %w", name, model.ErrMetadataMissing)
		}
		return fmt.Errorf("could not read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: invalid JSON: %w: %w", name, model.ErrMetadataCorrupt, err)
	}

	return nil
}

// ListUnits returns the unit files ordered by their numeric index.
func (r *Repository) ListUnits(ctx context.Context) ([]model.UnitFile, error) {
	units, err := r.list(ctx, func(name string) (int64, bool) {
		return r.unitIndex(name)
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(units, func(a, b model.UnitFile) int {
		return cmp.Compare(a.Index, b.Index)
	})

	return units, nil
}

// ListTempUnits returns the unit files being written ordered by name.
// Temp files with an unparseable index have index -1.
func (r *Repository) ListTempUnits(ctx context.Context) ([]model.UnitFile, error) {
	units, err := r.list(ctx, func(name string) (int64, bool) {
		base, ok := strings.CutSuffix(name, r.layout.TempExtension)
		if !ok {
			return 0, false
		}

		// Temp files may keep the final extension (e.g. `postdata_3.bin.dtmp`).
		base = strings.TrimSuffix(base, r.layout.UnitExtension)
		idx, ok := r.unitIndex(base + r.layout.UnitExtension)
		if !ok {
			return -1, true
		}
		return idx, true
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(units, func(a, b model.UnitFile) int {
		return strings.Compare(a.Name, b.Name)
	})

	return units, nil
}

// list returns the regular files accepted by match.
func (r *Repository) list(ctx context.Context, match func(name string) (int64, bool)) ([]model.UnitFile, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("could not list plot directory: %w", err)
	}

	units := []model.UnitFile{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		idx, ok := match(e.Name())
		if !ok {
			continue
		}

		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", e.Name(), model.ErrUnitVanished)
			}
			return nil, fmt.Errorf("could not stat %s: %w", e.Name(), err)
		}

		units = append(units, model.UnitFile{
			Name:      e.Name(),
			Index:     idx,
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		})
	}

	return units, nil
}

// unitIndex returns the numeric index of a unit file name like `postdata_12.bin`.
func (r *Repository) unitIndex(name string) (int64, bool) {
	s, ok := strings.CutPrefix(name, r.layout.UnitPrefix)
	if !ok {
		return 0, false
	}

	s, ok = strings.CutSuffix(s, r.layout.UnitExtension)
	if !ok || s == "" {
		return 0, false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			r.logger.Debugf("ignoring file with non numeric index: %s", name)
			return 0, false
		}
	}

	idx, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.logger.Debugf("ignoring file with invalid index %s: %s", name, err)
		return 0, false
	}

	return idx, true
}
