package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
)

// ExportPointsJSON writes points as a JSON array
func ExportPointsJSON(w io.Writer, points []domain.HeatPoint) error {
	if points == nil {
		points = []domain.HeatPoint{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(points)
}

// ExportPointsCSV writes points as CSV with headers
func ExportPointsCSV(w io.Writer, points []domain.HeatPoint) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Latitude", "Longitude", "Intensity"}); err != nil {
		return err
	}

	for _, p := range points {
		row := []string{
			formatFloat(p.Latitude, 6),
			formatFloat(p.Longitude, 6),
			formatFloat(p.Intensity, 3),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportHistoryCSV writes snapshot summaries, one poll per row.
func ExportHistoryCSV(w io.Writer, rows []domain.SnapshotSummary, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	writer := csv.NewWriter(w)

	headers := []string{
		"ID", "TakenAt", "Points",
		"UniqueLocations", "TotalVisits", "AvgStaySeconds",
		"EfficiencyPercent", "ProductiveVisits",
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			r.ID,
			r.TakenAt.In(loc).Format(time.RFC3339),
			strconv.Itoa(r.PointCount),
			fmt.Sprintf("%d", r.Stats.UniqueLocationsCovered),
			fmt.Sprintf("%d", r.Stats.TotalVisits),
			formatFloat(r.Stats.AverageStayDuration, 2),
			formatFloat(r.Stats.CoverageEfficiency, 2),
			fmt.Sprintf("%d", r.Stats.ProductiveVisits),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
