package mock

import (
	"testing"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitAt(lat, lng float64, stay int, at time.Time) Visit {
	return Visit{UserID: 1, Location: geo.Location{Latitude: lat, Longitude: lng}, StayDuration: stay, CreatedAt: at}
}

func TestIntensity(t *testing.T) {
	assert.InDelta(t, 0.1, Intensity(1, 0), 1e-9)
	assert.InDelta(t, 0.5, Intensity(1, 120), 1e-9)
	assert.InDelta(t, 0.7, Intensity(3, 120), 1e-9)
	assert.Equal(t, 1.0, Intensity(20, 600))
}

func TestHeatmapPoints_GroupsAndOrders(t *testing.T) {
	store := NewVisitStore()
	now := time.Now()

	store.Add(visitAt(25.85, 85.15, 60, now))
	store.Add(visitAt(25.86, 85.16, 0, now))
	store.Add(visitAt(25.86, 85.16, 0, now))
	store.Add(visitAt(25.86, 85.16, 0, now))
	// Same spot, different stay: its own group
	store.Add(visitAt(25.86, 85.16, 300, now))
	// Outside the constituency
	store.Add(visitAt(26.50, 85.16, 0, now))

	points := store.HeatmapPoints()
	require.Len(t, points, 3)

	assert.Equal(t, 25.86, points[0].Latitude)
	assert.InDelta(t, 0.3, points[0].Intensity, 1e-9)

	assert.Equal(t, 25.85, points[1].Latitude)
	assert.InDelta(t, 0.3, points[1].Intensity, 1e-9)

	assert.Equal(t, 1.0, points[2].Intensity)
}

func TestCoverageStats(t *testing.T) {
	store := NewVisitStore()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	store.Add(visitAt(25.8501, 85.1501, 150, now))
	// Snaps to the same 0.001 cell
	store.Add(visitAt(25.8502, 85.1502, 30, now.Add(-time.Hour)))
	store.Add(visitAt(25.8600, 85.1600, 121, now.AddDate(0, 0, -6)))
	// Older than the window
	store.Add(visitAt(25.8700, 85.1700, 500, now.AddDate(0, 0, -9)))

	stats := store.CoverageStats(now)
	assert.Equal(t, int64(2), stats.UniqueLocationsCovered)
	assert.Equal(t, int64(3), stats.TotalVisits)
	assert.Equal(t, int64(2), stats.ProductiveVisits)
	assert.Equal(t, 100.33, stats.AverageStayDuration)
	assert.Equal(t, 66.67, stats.CoverageEfficiency)
}

func TestCoverageStats_WindowStartsAtMidnight(t *testing.T) {
	store := NewVisitStore()
	now := time.Date(2026, 10, 16, 0, 30, 0, 0, time.UTC)

	store.Add(visitAt(25.85, 85.15, 0, time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC)))
	store.Add(visitAt(25.85, 85.15, 0, time.Date(2026, 10, 8, 23, 59, 0, 0, time.UTC)))

	assert.Equal(t, int64(1), store.CoverageStats(now).TotalVisits)
}

func TestCoverageStats_Empty(t *testing.T) {
	stats := NewVisitStore().CoverageStats(time.Now())
	assert.Zero(t, stats.TotalVisits)
	assert.Zero(t, stats.AverageStayDuration)
	assert.Zero(t, stats.CoverageEfficiency)
}

func TestDataGenerator_StaysInBounds(t *testing.T) {
	gen := NewDataGenerator(42, 3)
	for i := 0; i < 500; i++ {
		v := gen.NextVisit()
		require.True(t, geo.CampaignBounds.Contains(v.Location), "visit %d at %+v", i, v.Location)
		assert.GreaterOrEqual(t, v.UserID, int64(1))
		assert.LessOrEqual(t, v.UserID, int64(3))
	}
}

func TestDataGenerator_Scenario(t *testing.T) {
	store := NewVisitStore()
	NewDataGenerator(7, 0).GenerateScenario(store, 50)

	assert.Equal(t, 50, store.Len())
	assert.NotEmpty(t, store.HeatmapPoints())
	assert.Equal(t, int64(50), store.CoverageStats(time.Now()).TotalVisits)
}
