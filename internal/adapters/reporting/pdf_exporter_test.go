package reporting

import (
	"bytes"
	"testing"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporterExportCoverageReport(t *testing.T) {
	exporter := NewPDFExporter()

	report := &domain.CoverageReport{
		ID:          "2f1c7a44-report",
		Title:       "Campaign Coverage Report",
		GeneratedAt: time.Now(),
		Location:    time.UTC,
		Stats: domain.CoverageStats{
			UniqueLocationsCovered: 42,
			TotalVisits:            130,
			AverageStayDuration:    96.25,
			CoverageEfficiency:     38.46,
			ProductiveVisits:       50,
		},
		LastUpdate:    time.Now(),
		PointCount:    3,
		MeanIntensity: 0.7,
		Hotspots: []domain.HeatPoint{
			{Latitude: 25.8738, Longitude: 85.1797, Intensity: 1},
			{Latitude: 25.8601, Longitude: 85.1502, Intensity: 0.6},
		},
		History: []domain.SnapshotSummary{
			{ID: "a", TakenAt: time.Now(), PointCount: 3, Stats: domain.CoverageStats{TotalVisits: 130}},
		},
	}

	out, err := exporter.ExportCoverageReport(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output should be a PDF document")
}

func TestPDFExporter_EmptyReport(t *testing.T) {
	out, err := NewPDFExporter().ExportCoverageReport(&domain.CoverageReport{Title: "Empty"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporter_NilReport(t *testing.T) {
	_, err := NewPDFExporter().ExportCoverageReport(nil)
	assert.Error(t, err)
}

func TestEfficiencyColor(t *testing.T) {
	r, g, b := efficiencyColor(75)
	assert.Equal(t, []int{0xd7, 0x30, 0x27}, []int{r, g, b})
	r, g, b = efficiencyColor(0)
	assert.Equal(t, []int{0x31, 0x36, 0x95}, []int{r, g, b})
}
