package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/ports"
)

const (
	defaultHotspots = 10
	defaultHistory  = 12
)

// StateSource provides the dashboard state to report on.
type StateSource interface {
	State() domain.DashboardState
}

// CoverageReportGenerator builds coverage reports from the live dashboard state
// and the stored poll history.
type CoverageReportGenerator struct {
	source   StateSource
	store    ports.SnapshotStore
	location *time.Location
	now      func() time.Time

	Hotspots int
	History  int
}

// NewCoverageReportGenerator creates a generator. store may be nil.
func NewCoverageReportGenerator(source StateSource, store ports.SnapshotStore, loc *time.Location) *CoverageReportGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &CoverageReportGenerator{
		source:   source,
		store:    store,
		location: loc,
		now:      time.Now,
		Hotspots: defaultHotspots,
		History:  defaultHistory,
	}
}

// Generate snapshots the current state into a report.
func (g *CoverageReportGenerator) Generate(ctx context.Context) (*domain.CoverageReport, error) {
	state := g.source.State()

	report := &domain.CoverageReport{
		ID:            uuid.New().String(),
		Title:         "Campaign Coverage Report",
		GeneratedAt:   g.now().In(g.location),
		Location:      g.location,
		Stats:         state.Stats,
		LastUpdate:    state.View.LastUpdate.In(g.location),
		PointCount:    len(state.Points),
		MeanIntensity: meanIntensity(state.Points),
		Hotspots:      topPoints(state.Points, g.Hotspots),
	}

	if g.store != nil {
		history, err := g.store.ListSnapshots(ctx, g.History)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch snapshot history: %w", err)
		}
		report.History = history
	}

	return report, nil
}

func meanIntensity(points []domain.HeatPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Intensity
	}
	return sum / float64(len(points))
}

// topPoints returns the n most intense points without mutating the input.
func topPoints(points []domain.HeatPoint, n int) []domain.HeatPoint {
	sorted := make([]domain.HeatPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Intensity > sorted[j].Intensity
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
