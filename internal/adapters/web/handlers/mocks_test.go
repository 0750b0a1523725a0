package handlers

import (
	"context"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockDashboard struct {
	mock.Mock
}

func (m *MockDashboard) State() domain.DashboardState {
	args := m.Called()
	return args.Get(0).(domain.DashboardState)
}

func (m *MockDashboard) LayerOptions() domain.LayerOptions {
	args := m.Called()
	return args.Get(0).(domain.LayerOptions)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	return m.Called(ctx, snap).Error(0)
}

func (m *MockStore) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*domain.Snapshot)
	return snap, args.Error(1)
}

func (m *MockStore) ListSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error) {
	args := m.Called(ctx, limit)
	rows, _ := args.Get(0).([]domain.SnapshotSummary)
	return rows, args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context) (*domain.CoverageReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*domain.CoverageReport)
	return r, args.Error(1)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportCoverageReport(report *domain.CoverageReport) ([]byte, error) {
	args := m.Called(report)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}
