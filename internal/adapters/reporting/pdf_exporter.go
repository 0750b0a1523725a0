package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/campaign-heatmap/internal/core/domain"
)

// PDFExporter exports coverage reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportCoverageReport renders a coverage report as a PDF document.
func (e *PDFExporter) ExportCoverageReport(report *domain.CoverageReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addEfficiency(pdf, report)
	e.addStatistics(pdf, report)
	e.addHotspots(pdf, report)
	e.addHistory(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.CoverageReport) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 15, report.Title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Generated: "+report.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	if !report.LastUpdate.IsZero() {
		pdf.CellFormat(0, 6, "Data as of: "+report.LastUpdate.Format("2006-01-02 3:04:05 pm MST"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

// addEfficiency draws the coverage efficiency banner.
func (e *PDFExporter) addEfficiency(pdf *gofpdf.Fpdf, report *domain.CoverageReport) {
	r, g, b := efficiencyColor(report.Stats.CoverageEfficiency)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 30, "F")

	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 36)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(80, 20, fmt.Sprintf("%.2f%%", report.Stats.CoverageEfficiency), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(110, y+8)
	pdf.CellFormat(80, 14, "Coverage Efficiency", "", 0, "L", false, 0, "")

	pdf.SetY(y + 35)
	pdf.Ln(5)
}

// efficiencyColor maps efficiency to the legend's gradient ends.
func efficiencyColor(pct float64) (r, g, b int) {
	switch {
	case pct >= 60:
		return 0xd7, 0x30, 0x27
	case pct >= 40:
		return 0xfd, 0xae, 0x61
	case pct >= 20:
		return 0x74, 0xad, 0xd1
	default:
		return 0x31, 0x36, 0x95
	}
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report *domain.CoverageReport) {
	sectionTitle(pdf, "Campaign Overview")

	stats := []struct {
		label string
		value string
	}{
		{"Locations Covered", fmt.Sprintf("%d", report.Stats.UniqueLocationsCovered)},
		{"Total Visits", fmt.Sprintf("%d", report.Stats.TotalVisits)},
		{"Avg Stay", fmt.Sprintf("%gs", report.Stats.AverageStayDuration)},
		{"Productive Visits", fmt.Sprintf("%d", report.Stats.ProductiveVisits)},
		{"Displayed Points", fmt.Sprintf("%d", report.PointCount)},
		{"Mean Intensity", fmt.Sprintf("%.2f", report.MeanIntensity)},
	}

	// Two columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(10)
}

func (e *PDFExporter) addHotspots(pdf *gofpdf.Fpdf, report *domain.CoverageReport) {
	sectionTitle(pdf, "Hotspots")

	if len(report.Hotspots) == 0 {
		emptyNote(pdf, "No campaign activity recorded")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(15, 8, "Rank", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, "Latitude", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, "Longitude", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 8, "Intensity", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, p := range report.Hotspots {
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, fmt.Sprintf("%.5f", p.Latitude), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 7, fmt.Sprintf("%.5f", p.Longitude), "1", 0, "C", false, 0, "")
		r, g, b := efficiencyColor(p.Intensity * 100)
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(45, 7, fmt.Sprintf("%.2f", p.Intensity), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addHistory(pdf *gofpdf.Fpdf, report *domain.CoverageReport) {
	if pdf.GetY() > 220 {
		pdf.AddPage()
	}
	sectionTitle(pdf, "Recent Polls")

	if len(report.History) == 0 {
		emptyNote(pdf, "No stored history")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(50, 8, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Points", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Visits", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Locations", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Efficiency", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, h := range report.History {
		if pdf.GetY() > 270 {
			pdf.AddPage()
		}
		taken := h.TakenAt
		if report.Location != nil {
			taken = taken.In(report.Location)
		}
		pdf.CellFormat(50, 7, taken.Format("02 Jan 3:04:05 pm"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", h.PointCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", h.Stats.TotalVisits), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%d", h.Stats.UniqueLocationsCovered), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f%%", h.Stats.CoverageEfficiency), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.CoverageReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	id := report.ID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Campaign Heatmap | Report ID: "+id, "", 1, "C", false, 0, "")
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func emptyNote(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}
