package display

import (
	"testing"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kolkata(t *testing.T) *time.Location {
	loc, err := LoadLocation(DefaultTimeZone)
	require.NoError(t, err)
	return loc
}

func TestNewHeader_Zeroes(t *testing.T) {
	h := NewHeader(domain.CoverageStats{}, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), kolkata(t))

	assert.Equal(t, int64(0), h.UniqueLocations)
	assert.Equal(t, int64(0), h.TotalVisits)
	assert.Equal(t, "0s", h.AvgStay)
	assert.Equal(t, "0%", h.Efficiency)
	assert.Equal(t, "5:30:00 am", h.LastUpdate)
}

func TestNewHeader_Values(t *testing.T) {
	stats := domain.CoverageStats{
		UniqueLocationsCovered: 12,
		TotalVisits:            40,
		AverageStayDuration:    95.5,
		CoverageEfficiency:     37.5,
	}
	at := time.Date(2026, 10, 16, 9, 34, 5, 0, time.UTC)

	h := NewHeader(stats, at, kolkata(t))
	assert.Equal(t, int64(12), h.UniqueLocations)
	assert.Equal(t, int64(40), h.TotalVisits)
	assert.Equal(t, "95.5s", h.AvgStay)
	assert.Equal(t, "37.5%", h.Efficiency)
	assert.Equal(t, "3:04:05 pm", h.LastUpdate)
}

func TestLoadLocation_Fallback(t *testing.T) {
	loc, err := LoadLocation("Nowhere/Atlantis")
	assert.Error(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeZone, loc.String())
}

func TestNewMapConfig(t *testing.T) {
	cfg := NewMapConfig()

	assert.Equal(t, [2]float64{25.8738, 85.1797}, cfg.Center)
	assert.Equal(t, 13, cfg.Zoom)
	assert.Equal(t, [2][2]float64{{25.82, 85.10}, {25.90, 85.25}}, cfg.MaxBounds)
	assert.Equal(t, 1.0, cfg.MaxBoundsViscosity)
	assert.Contains(t, cfg.Attribution, "OpenStreetMap")
	assert.NotEmpty(t, cfg.Icons.IconURL)
}

func TestNewState_Loading(t *testing.T) {
	state := domain.DashboardState{
		Points: []domain.HeatPoint{{Latitude: 25.85, Longitude: 85.15, Intensity: 0.5}},
		View:   domain.ViewState{IsLoading: true},
	}

	s := NewState(state, domain.DefaultLayerOptions(), time.UTC)
	assert.Equal(t, LoadingText, s.Loading)
	assert.Equal(t, [][3]float64{{25.85, 85.15, 0.5}}, s.Points)
	assert.Equal(t, "#313695", s.Legend.LowColor)
	assert.Equal(t, "#d73027", s.Legend.HighColor)

	state.View.IsLoading = false
	assert.Empty(t, NewState(state, domain.DefaultLayerOptions(), time.UTC).Loading)
}

func TestResolveIcons(t *testing.T) {
	set := resolveIcons("/static/leaflet")
	assert.Equal(t, "/static/leaflet/marker-icon.png", set.IconURL)
	assert.Equal(t, "/static/leaflet/marker-icon-2x.png", set.IconRetinaURL)
	assert.Equal(t, "/static/leaflet/marker-shadow.png", set.ShadowURL)

	assert.Equal(t, DefaultIconBase+"marker-icon.png", resolveIcons("").IconURL)
}

func TestInitIcons_Once(t *testing.T) {
	first := InitIcons("/first/")
	second := InitIcons("/second/")
	assert.Equal(t, first, second)
	assert.Equal(t, first, Icons())
}
