package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/slok/plotmon/internal/model"
	"github.com/slok/plotmon/internal/storage"
)

var _ storage.PlotRepository = &MockPlotRepository{}

// MockPlotRepository is a testify mock of storage.PlotRepository.
type MockPlotRepository struct {
	mock.Mock
}

func (m *MockPlotRepository) GetMetadata(ctx context.Context) (*model.JobMetadata, error) {
	args := m.Called(ctx)
	md, _ := args.Get(0).(*model.JobMetadata)
	return md, args.Error(1)
}

func (m *MockPlotRepository) GetProgressIndex(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlotRepository) ListUnits(ctx context.Context) ([]model.UnitFile, error) {
	args := m.Called(ctx)
	units, _ := args.Get(0).([]model.UnitFile)
	return units, args.Error(1)
}

func (m *MockPlotRepository) ListTempUnits(ctx context.Context) ([]model.UnitFile, error) {
	args := m.Called(ctx)
	units, _ := args.Get(0).([]model.UnitFile)
	return units, args.Error(1)
}
