package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportPointsCSV(t *testing.T) {
	var buf bytes.Buffer
	points := []domain.HeatPoint{
		{Latitude: 25.87, Longitude: 85.18, Intensity: 0.5},
		{Latitude: 25.8512346, Longitude: 85.2, Intensity: 1},
	}

	require.NoError(t, ExportPointsCSV(&buf, points))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Latitude", "Longitude", "Intensity"}, records[0])
	assert.Equal(t, []string{"25.870000", "85.180000", "0.500"}, records[1])
	assert.Equal(t, []string{"25.851235", "85.200000", "1.000"}, records[2])
}

func TestExportPointsJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportPointsJSON(&buf, nil))

	var out []domain.HeatPoint
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestExportHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []domain.SnapshotSummary{{
		ID:         "snap-1",
		TakenAt:    time.Date(2024, 5, 1, 6, 30, 0, 0, time.UTC),
		PointCount: 12,
		Stats: domain.CoverageStats{
			UniqueLocationsCovered: 7,
			TotalVisits:            20,
			AverageStayDuration:    150.456,
			CoverageEfficiency:     65,
			ProductiveVisits:       13,
		},
	}}

	require.NoError(t, ExportHistoryCSV(&buf, rows, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Len(t, records[0], 8)
	assert.Equal(t, []string{"snap-1", "2024-05-01T06:30:00Z", "12", "7", "20", "150.46", "65.00", "13"}, records[1])
}
