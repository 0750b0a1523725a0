package storage

import (
	"context"
	"testing"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupInMemoryDB creates a new SQLiteAdapter used for testing
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	adapter, err := newAdapter(db)
	require.NoError(t, err)
	return adapter
}

func seed(t *testing.T, a *SQLiteAdapter, base time.Time, n int) {
	for i := 0; i < n; i++ {
		err := a.SaveSnapshot(context.Background(), domain.Snapshot{
			TakenAt: base.Add(time.Duration(i) * time.Minute),
			Points:  []domain.HeatPoint{{Latitude: 25.85, Longitude: 85.15, Intensity: 0.5}},
			Stats:   domain.CoverageStats{TotalVisits: int64(i)},
		})
		require.NoError(t, err)
	}
}

func TestLatestSnapshot_Empty(t *testing.T) {
	adapter := setupInMemoryDB(t)

	snap, err := adapter.LatestSnapshot(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveAndLatestSnapshot(t *testing.T) {
	adapter := setupInMemoryDB(t)
	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	seed(t, adapter, base, 3)

	latest, err := adapter.LatestSnapshot(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.NotEmpty(t, latest.ID)
	assert.Equal(t, int64(2), latest.Stats.TotalVisits)
	assert.True(t, latest.TakenAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, []domain.HeatPoint{{Latitude: 25.85, Longitude: 85.15, Intensity: 0.5}}, latest.Points)
}

func TestListSnapshots_NewestFirst(t *testing.T) {
	adapter := setupInMemoryDB(t)
	seed(t, adapter, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), 5)

	list, err := adapter.ListSnapshots(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(4), list[0].Stats.TotalVisits)
	assert.Equal(t, int64(3), list[1].Stats.TotalVisits)
	assert.Equal(t, 1, list[0].PointCount)
}

func TestPrune(t *testing.T) {
	adapter := setupInMemoryDB(t)
	seed(t, adapter, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC), 5)

	removed, err := adapter.Prune(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	list, err := adapter.ListSnapshots(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
